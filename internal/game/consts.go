package game

const (
	SimHz        = 20.0 // server tick rate
	Dt           = 1.0 / SimHz
	UpdateRateHz = 10.0 // per-client WS state pushes

	ArenaW           = 800.0
	ArenaH           = 600.0
	ArenaSpawnMargin = 50.0

	PlayerMaxHealth = 100
	PlayerSpeed     = 200.0 // units/s
	PlayerRadius    = 8.0
	PlayerGraceS    = 0.4 // two 100ms blink cycles
	ContactDamage   = 10

	EnemyMaxHealth = 20
	EnemySpeed     = 100.0
	EnemyRadius    = 8.0
	EnemyGraceS    = 0.2

	MeleeDamage      = 5
	ProjectileDamage = 2

	KnockbackSpeed     = 160.0
	KnockbackDurationS = 0.15

	SlashOffset    = 16.0
	SlashRadius    = 8.0
	SlashDurationS = 0.5

	ProjectileOffset    = 16.0
	ProjectileSpeed     = 400.0
	ProjectileRadius    = 3.0
	ProjectileLifetimeS = 1.0
	MaxProjectiles      = 10

	PickupRadius    = 6.0
	PickupLifetimeS = 8.0
	DropChance      = 1.0

	KillReward   = 10
	PickupReward = 5

	SpawnIntervalS = 2.0
	EnemyCap       = 5
	RespawnDelayS  = 1.0
)
