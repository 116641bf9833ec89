package profile

// Fixed gameplay tables. These are part of the difficulty-profile contract:
// the turn engine must reproduce them exactly for deterministic tests.

// Intensity weights per action kind. Higher intensity depletes food and
// water faster (resource use = tier depletion rate * intensity).
const (
	IntensityCombat  = 2.0
	IntensityMove    = 1.5
	IntensityExplore = 1.2
	IntensityStealth = 1.0
	IntensityRest    = 0.5
	IntensityCustom  = 1.0
)

// Combat damage draw bounds. The draw is a uniform integer in
// [CombatDamageMin, CombatDamageMax], scaled by the action intensity.
const (
	CombatDamageMin = 5
	CombatDamageMax = 15
)

// Explore probabilities.
const (
	ExploreFindSupplyChance = 0.6
	ExploreFindItemChance   = 0.3
	ExploreFindWeaponChance = 0.2
	ExploreSupplyMin        = 1
	ExploreSupplyMax        = 3
)

// LootEntry describes an inventory item that exploration can yield.
type LootEntry struct {
	Item   string
	MinQty int
	MaxQty int
}

// LootTable lists the items exploration can yield, picked uniformly.
// Order is fixed so seeded draws stay reproducible.
var LootTable = []LootEntry{
	{Item: "Bandages", MinQty: 1, MaxQty: 3},
	{Item: "Medicine", MinQty: 1, MaxQty: 2},
	{Item: "Ammunition", MinQty: 5, MaxQty: 15},
	{Item: "Tools", MinQty: 1, MaxQty: 2},
}

// WeaponRarity is a discrete probability table: rarer weapons carry lower
// weights. Weights sum to 1.0.
type WeaponRarity struct {
	Weapon string
	Weight float64
}

// WeaponRarityTable lists findable weapons by descending commonness.
var WeaponRarityTable = []WeaponRarity{
	{Weapon: "Baseball Bat", Weight: 0.4},
	{Weapon: "Knife", Weight: 0.3},
	{Weapon: "Crowbar", Weight: 0.2},
	{Weapon: "Pistol", Weight: 0.1},
}

// WeaponDamage maps carried weapons to damage dealt, used when narrating
// combat outcomes. Unknown weapons fall back to bare hands.
var WeaponDamage = map[string]int{
	"Fists":        5,
	"Baseball Bat": 15,
	"Knife":        20,
	"Crowbar":      25,
	"Pistol":       40,
}

// BareHandsDamage is the damage for a weapon missing from WeaponDamage.
const BareHandsDamage = 5

// ItemHeal maps usable inventory items to the health they restore.
// Items absent from this map have no use effect.
var ItemHeal = map[string]int{
	"Bandages": 20,
	"Medicine": 40,
}

// RestFoodCost and RestWaterCost are consumed by an effective rest.
const (
	RestFoodCost  = 1
	RestWaterCost = 1
)
