package server

import (
	"SolanaRogue/internal/game"
	"SolanaRogue/internal/ledger"
)

type entityDTO struct {
	ID         int64   `json:"id"`
	X          float64 `json:"x"`
	Y          float64 `json:"y"`
	VX         float64 `json:"vx"`
	VY         float64 `json:"vy"`
	FX         float64 `json:"fx,omitempty"`
	FY         float64 `json:"fy,omitempty"`
	R          float64 `json:"r"`
	HP         int     `json:"hp,omitempty"`
	MaxHP      int     `json:"max_hp,omitempty"`
	Invincible bool    `json:"invincible,omitempty"`
	Knockback  bool    `json:"knockback,omitempty"`
}

func toEntityDTO(e game.Entity) entityDTO {
	return entityDTO{
		ID:         int64(e.ID),
		X:          e.Pos.X,
		Y:          e.Pos.Y,
		VX:         e.Vel.X,
		VY:         e.Vel.Y,
		FX:         e.Facing.X,
		FY:         e.Facing.Y,
		R:          e.Radius,
		HP:         e.Health,
		MaxHP:      e.MaxHealth,
		Invincible: e.Has(game.FlagInvincible),
		Knockback:  e.Has(game.FlagKnockedBack),
	}
}

func toEntityDTOs(in []game.Entity) []entityDTO {
	out := make([]entityDTO, len(in))
	for i, e := range in {
		out[i] = toEntityDTO(e)
	}
	return out
}

type rectDTO struct {
	MinX float64 `json:"min_x"`
	MinY float64 `json:"min_y"`
	MaxX float64 `json:"max_x"`
	MaxY float64 `json:"max_y"`
}

type arenaDTO struct {
	W     float64   `json:"w"`
	H     float64   `json:"h"`
	Walls []rectDTO `json:"walls,omitempty"`
}

func toArenaDTO(a game.Arena) arenaDTO {
	out := arenaDTO{W: a.Bounds.Max.X - a.Bounds.Min.X, H: a.Bounds.Max.Y - a.Bounds.Min.Y}
	for _, w := range a.Walls {
		out.Walls = append(out.Walls, rectDTO{MinX: w.Min.X, MinY: w.Min.Y, MaxX: w.Max.X, MaxY: w.Max.Y})
	}
	return out
}

type walletDTO struct {
	Address  string  `json:"address"`
	Lamports uint64  `json:"lamports"`
	SOL      float64 `json:"sol"`
}

type stateMsg struct {
	SessionID   string               `json:"session"`
	State       string               `json:"state"`
	Now         float64              `json:"now"`
	Score       uint64               `json:"score"`
	Kills       int                  `json:"kills"`
	Player      entityDTO            `json:"player"`
	Enemies     []entityDTO          `json:"enemies"`
	Projectiles []entityDTO          `json:"projectiles"`
	Pickups     []entityDTO          `json:"pickups"`
	Hitboxes    []entityDTO          `json:"hitboxes"`
	Arena       arenaDTO             `json:"arena"`
	Wallet      *walletDTO           `json:"wallet,omitempty"`
	Commit      *ledger.CommitResult `json:"commit,omitempty"`
}

func toStateMsg(v game.RoomView, arena game.Arena) stateMsg {
	msg := stateMsg{
		SessionID:   v.SessionID,
		State:       v.State.String(),
		Now:         v.Now,
		Score:       v.Score,
		Kills:       v.Kills,
		Player:      toEntityDTO(v.Player),
		Enemies:     toEntityDTOs(v.Enemies),
		Projectiles: toEntityDTOs(v.Projectiles),
		Pickups:     toEntityDTOs(v.Pickups),
		Hitboxes:    toEntityDTOs(v.Hitboxes),
		Arena:       toArenaDTO(arena),
		Commit:      v.LastCommit,
	}
	if v.Wallet != "" {
		msg.Wallet = &walletDTO{
			Address:  v.Wallet,
			Lamports: v.WalletBalance,
			SOL:      ledger.LamportsToSOL(v.WalletBalance),
		}
	}
	return msg
}

type inputDTO struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

type walletConnectDTO struct {
	Address string `json:"address"`
}

type signRequestDTO struct {
	RequestID string `json:"requestId"`
	Wallet    string `json:"wallet"`
	// Message is the base64 serialized transaction message to sign.
	Message string `json:"message"`
}

type signResponseDTO struct {
	RequestID string `json:"requestId"`
	Signature string `json:"signature"`
}

type signCancelDTO struct {
	RequestID string `json:"requestId"`
}

type errorDTO struct {
	Message string `json:"message"`
}

type restartedDTO struct {
	SessionID string `json:"session"`
}
