package sqlite

import (
	"encoding/json"
	"fmt"

	"github.com/tengfone/deadtext/internal/game/domain/session"
)

// sessionRow mirrors the sessions table layout for scanning.
type sessionRow struct {
	playerID      string
	displayName   string
	health        int
	food          float64
	water         float64
	weaponsJSON   string
	inventoryJSON string
	currentDay    int
	difficulty    string
	location      string
	scenario      string
	active        int64
	updatedAt     int64
}

func sessionToRow(sess session.Session, updatedAt int64) (sessionRow, error) {
	weapons := sess.Weapons
	if weapons == nil {
		weapons = []string{}
	}
	weaponsJSON, err := json.Marshal(weapons)
	if err != nil {
		return sessionRow{}, fmt.Errorf("encode weapons: %w", err)
	}

	inventory := sess.Inventory
	if inventory == nil {
		inventory = map[string]int{}
	}
	inventoryJSON, err := json.Marshal(inventory)
	if err != nil {
		return sessionRow{}, fmt.Errorf("encode inventory: %w", err)
	}

	active := int64(0)
	if sess.Active {
		active = 1
	}

	return sessionRow{
		playerID:      sess.PlayerID,
		displayName:   sess.DisplayName,
		health:        sess.Health,
		food:          sess.Food,
		water:         sess.Water,
		weaponsJSON:   string(weaponsJSON),
		inventoryJSON: string(inventoryJSON),
		currentDay:    sess.CurrentDay,
		difficulty:    string(sess.Difficulty),
		location:      sess.Location,
		scenario:      sess.Scenario,
		active:        active,
		updatedAt:     updatedAt,
	}, nil
}

func rowToSession(row sessionRow) (session.Session, error) {
	var weapons []string
	if err := json.Unmarshal([]byte(row.weaponsJSON), &weapons); err != nil {
		return session.Session{}, fmt.Errorf("decode weapons: %w", err)
	}

	inventory := map[string]int{}
	if err := json.Unmarshal([]byte(row.inventoryJSON), &inventory); err != nil {
		return session.Session{}, fmt.Errorf("decode inventory: %w", err)
	}

	return session.Session{
		PlayerID:    row.playerID,
		DisplayName: row.displayName,
		Health:      row.health,
		Food:        row.food,
		Water:       row.water,
		Weapons:     weapons,
		Inventory:   inventory,
		CurrentDay:  row.currentDay,
		Difficulty:  session.Difficulty(row.difficulty),
		Location:    row.location,
		Scenario:    row.scenario,
		Active:      row.active != 0,
		UpdatedAt:   fromMillis(row.updatedAt),
	}, nil
}
