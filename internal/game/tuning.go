package game

// Tuning holds the combat and progression constants of a session. Damage
// values changed a lot while the game was balanced, so they are config, not
// code.
type Tuning struct {
	PlayerMaxHealth int     // Starting and maximum player health
	PlayerSpeed     float64 // Player move speed in units/s
	PlayerRadius    float64
	PlayerGrace     float64 // Invincibility window after the player is hit (s)
	ContactDamage   int     // Damage per enemy contact

	EnemyMaxHealth int
	EnemySpeed     float64 // Chase speed toward the player
	EnemyRadius    float64
	EnemyGrace     float64 // Invincibility window after an enemy is hit (s)

	MeleeDamage      int
	ProjectileDamage int

	KnockbackSpeed    float64
	KnockbackDuration float64

	SlashOffset   float64 // Hitbox distance from the player along facing
	SlashRadius   float64
	SlashDuration float64

	ProjectileOffset   float64
	ProjectileSpeed    float64
	ProjectileRadius   float64
	ProjectileLifetime float64
	MaxProjectiles     int

	PickupRadius   float64
	PickupLifetime float64
	DropChance     float64 // Probability (0..1) that a kill drops a pickup

	KillReward   uint64
	PickupReward uint64

	SpawnInterval float64 // Cadence of the spawn director (s)
	EnemyCap      int     // Population target checked on every cadence tick
	InitialEnemy  bool    // Spawn one enemy when the session starts
	RespawnOnKill bool    // Spawn a replacement RespawnDelay after each kill
	RespawnDelay  float64
}

// DefaultTuning returns the shipped balance.
func DefaultTuning() Tuning {
	return Tuning{
		PlayerMaxHealth:    PlayerMaxHealth,
		PlayerSpeed:        PlayerSpeed,
		PlayerRadius:       PlayerRadius,
		PlayerGrace:        PlayerGraceS,
		ContactDamage:      ContactDamage,
		EnemyMaxHealth:     EnemyMaxHealth,
		EnemySpeed:         EnemySpeed,
		EnemyRadius:        EnemyRadius,
		EnemyGrace:         EnemyGraceS,
		MeleeDamage:        MeleeDamage,
		ProjectileDamage:   ProjectileDamage,
		KnockbackSpeed:     KnockbackSpeed,
		KnockbackDuration:  KnockbackDurationS,
		SlashOffset:        SlashOffset,
		SlashRadius:        SlashRadius,
		SlashDuration:      SlashDurationS,
		ProjectileOffset:   ProjectileOffset,
		ProjectileSpeed:    ProjectileSpeed,
		ProjectileRadius:   ProjectileRadius,
		ProjectileLifetime: ProjectileLifetimeS,
		MaxProjectiles:     MaxProjectiles,
		PickupRadius:       PickupRadius,
		PickupLifetime:     PickupLifetimeS,
		DropChance:         DropChance,
		KillReward:         KillReward,
		PickupReward:       PickupReward,
		SpawnInterval:      SpawnIntervalS,
		EnemyCap:           EnemyCap,
		InitialEnemy:       true,
		RespawnOnKill:      true,
		RespawnDelay:       RespawnDelayS,
	}
}

// SanitizeTuning replaces out-of-range values with defaults.
func SanitizeTuning(t Tuning) Tuning {
	d := DefaultTuning()

	if t.PlayerMaxHealth <= 0 {
		t.PlayerMaxHealth = d.PlayerMaxHealth
	}
	if !(t.PlayerSpeed >= 0) {
		t.PlayerSpeed = d.PlayerSpeed
	}
	if !(t.PlayerRadius > 0) {
		t.PlayerRadius = d.PlayerRadius
	}
	if !(t.PlayerGrace >= 0) {
		t.PlayerGrace = d.PlayerGrace
	}
	if t.ContactDamage < 0 {
		t.ContactDamage = d.ContactDamage
	}
	if t.EnemyMaxHealth <= 0 {
		t.EnemyMaxHealth = d.EnemyMaxHealth
	}
	if !(t.EnemySpeed >= 0) {
		t.EnemySpeed = d.EnemySpeed
	}
	if !(t.EnemyRadius > 0) {
		t.EnemyRadius = d.EnemyRadius
	}
	if !(t.EnemyGrace >= 0) {
		t.EnemyGrace = d.EnemyGrace
	}
	if t.MeleeDamage < 0 {
		t.MeleeDamage = d.MeleeDamage
	}
	if t.ProjectileDamage < 0 {
		t.ProjectileDamage = d.ProjectileDamage
	}
	if !(t.KnockbackSpeed >= 0) {
		t.KnockbackSpeed = d.KnockbackSpeed
	}
	if !(t.KnockbackDuration >= 0) {
		t.KnockbackDuration = d.KnockbackDuration
	}
	if !(t.SlashOffset >= 0) {
		t.SlashOffset = d.SlashOffset
	}
	if !(t.SlashRadius > 0) {
		t.SlashRadius = d.SlashRadius
	}
	if !(t.SlashDuration > 0) {
		t.SlashDuration = d.SlashDuration
	}
	if !(t.ProjectileOffset >= 0) {
		t.ProjectileOffset = d.ProjectileOffset
	}
	if !(t.ProjectileSpeed > 0) {
		t.ProjectileSpeed = d.ProjectileSpeed
	}
	if !(t.ProjectileRadius > 0) {
		t.ProjectileRadius = d.ProjectileRadius
	}
	if !(t.ProjectileLifetime > 0) {
		t.ProjectileLifetime = d.ProjectileLifetime
	}
	if t.MaxProjectiles <= 0 {
		t.MaxProjectiles = d.MaxProjectiles
	}
	if !(t.PickupRadius > 0) {
		t.PickupRadius = d.PickupRadius
	}
	if !(t.PickupLifetime > 0) {
		t.PickupLifetime = d.PickupLifetime
	}
	if !(t.DropChance >= 0) {
		t.DropChance = 0
	}
	if t.DropChance > 1 {
		t.DropChance = 1
	}
	if !(t.SpawnInterval > 0) {
		t.SpawnInterval = d.SpawnInterval
	}
	if t.EnemyCap < 0 {
		t.EnemyCap = d.EnemyCap
	}
	if !(t.RespawnDelay >= 0) {
		t.RespawnDelay = d.RespawnDelay
	}
	return t
}
