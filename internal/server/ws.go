package server

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/structpb"

	"SolanaRogue/internal/game"
	"SolanaRogue/internal/ledger"
)

const (
	writeWait      = 5 * time.Second
	balanceTimeout = 10 * time.Second
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

type inboundMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

type outboundMessage struct {
	Type    string `json:"type"`
	Payload any    `json:"payload,omitempty"`
}

// liveConn serializes writes to one websocket. Binary connections carry
// the same {type, payload} frames encoded as a protobuf Struct.
type liveConn struct {
	conn   *websocket.Conn
	binary bool
	mu     sync.Mutex
}

func (lc *liveConn) send(msgType string, payload any) error {
	lc.mu.Lock()
	defer lc.mu.Unlock()
	_ = lc.conn.SetWriteDeadline(time.Now().Add(writeWait))
	if !lc.binary {
		return lc.conn.WriteJSON(outboundMessage{Type: msgType, Payload: payload})
	}
	data, err := encodeProtoFrame(msgType, payload)
	if err != nil {
		return err
	}
	return lc.conn.WriteMessage(websocket.BinaryMessage, data)
}

func encodeProtoFrame(msgType string, payload any) ([]byte, error) {
	var body any
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("encode %s payload: %w", msgType, err)
		}
		if err := json.Unmarshal(raw, &body); err != nil {
			return nil, fmt.Errorf("encode %s payload: %w", msgType, err)
		}
	}
	frame, err := structpb.NewStruct(map[string]any{"type": msgType, "payload": body})
	if err != nil {
		return nil, fmt.Errorf("build %s frame: %w", msgType, err)
	}
	data, err := proto.Marshal(frame)
	if err != nil {
		return nil, fmt.Errorf("marshal %s frame: %w", msgType, err)
	}
	return data, nil
}

func decodeProtoFrame(data []byte) (inboundMessage, error) {
	var frame structpb.Struct
	if err := proto.Unmarshal(data, &frame); err != nil {
		return inboundMessage{}, fmt.Errorf("unmarshal frame: %w", err)
	}
	raw, err := json.Marshal(frame.AsMap())
	if err != nil {
		return inboundMessage{}, fmt.Errorf("re-encode frame: %w", err)
	}
	var msg inboundMessage
	if err := json.Unmarshal(raw, &msg); err != nil {
		return inboundMessage{}, fmt.Errorf("decode frame: %w", err)
	}
	return msg, nil
}

// wsSession is one client attached to a room.
type wsSession struct {
	app  *App
	room *game.Room
	lc   *liveConn
	log  zerolog.Logger
	ctx  context.Context

	// signer is the browser wallet this connection bound, if any. Only the
	// read loop touches it until the read loop has exited.
	signer *RemoteSigner
}

func (a *App) serveWS(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	roomID := query.Get("room")
	if roomID == "" {
		roomID = uuid.NewString()
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		a.log.Warn().Err(err).Msg("websocket upgrade")
		return
	}
	lc := &liveConn{
		conn:   conn,
		binary: strings.EqualFold(query.Get("format"), "proto"),
	}

	ctx, cancel := context.WithCancel(a.baseCtx)
	defer cancel()

	room := a.hub.JoinRoom(roomID)
	ws := &wsSession{
		app:  a,
		room: room,
		lc:   lc,
		log:  a.log.With().Str("room", roomID).Str("remote", r.RemoteAddr).Logger(),
		ctx:  ctx,
	}
	ws.log.Info().Bool("binary", lc.binary).Msg("client connected")
	ws.bindLocalWallet()

	readDone := make(chan struct{})
	go func() {
		defer close(readDone)
		defer cancel()
		ws.readLoop()
	}()

	ws.writeLoop()

	cancel()
	conn.Close()
	<-readDone
	if ws.signer != nil {
		room.ReleaseSigner(ws.signer)
		ws.signer.Close()
	}
	room.Detach()
	ws.log.Info().Msg("client disconnected")
}

func (ws *wsSession) readLoop() {
	for {
		msgType, data, err := ws.lc.conn.ReadMessage()
		if err != nil {
			return
		}
		var msg inboundMessage
		switch msgType {
		case websocket.TextMessage:
			if err := json.Unmarshal(data, &msg); err != nil {
				ws.log.Debug().Err(err).Msg("invalid JSON message")
				ws.replyError("invalid message")
				continue
			}
		case websocket.BinaryMessage:
			msg, err = decodeProtoFrame(data)
			if err != nil {
				ws.log.Debug().Err(err).Msg("invalid binary message")
				ws.replyError("invalid message")
				continue
			}
		default:
			continue
		}
		ws.handle(msg)
	}
}

func (ws *wsSession) writeLoop() {
	ticker := time.NewTicker(time.Duration(float64(time.Second) / game.UpdateRateHz))
	defer ticker.Stop()

	var lastCommit string
	for {
		view := ws.room.View()
		if err := ws.lc.send("state", toStateMsg(view, ws.app.arena)); err != nil {
			ws.log.Debug().Err(err).Msg("send state")
			return
		}
		if c := view.LastCommit; c != nil {
			key := c.SessionID + "/" + string(c.Outcome)
			if key != lastCommit {
				lastCommit = key
				if err := ws.lc.send("commit", c); err != nil {
					ws.log.Debug().Err(err).Msg("send commit")
					return
				}
			}
		}
		select {
		case <-ws.ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

func (ws *wsSession) handle(msg inboundMessage) {
	switch msg.Type {
	case "input":
		var in inputDTO
		if !ws.decode(msg, &in) {
			return
		}
		ws.room.Move(game.Vec2{X: in.X, Y: in.Y})
	case "slash":
		ws.room.Slash()
	case "shoot":
		ws.room.Shoot()
	case "restart":
		id := ws.room.Restart()
		_ = ws.lc.send("restarted", restartedDTO{SessionID: id})
	case "wallet:connect":
		var in walletConnectDTO
		if !ws.decode(msg, &in) {
			return
		}
		ws.connectWallet(in.Address)
	case "wallet:disconnect":
		ws.disconnectWallet()
	case "sign:response":
		var in signResponseDTO
		if !ws.decode(msg, &in) {
			return
		}
		ws.resolveSignature(in)
	case "sign:cancel":
		var in signCancelDTO
		if !ws.decode(msg, &in) {
			return
		}
		if ws.signer == nil || !ws.signer.Cancel(in.RequestID) {
			ws.log.Debug().Str("request", in.RequestID).Msg("cancel for unknown sign request")
		}
	default:
		ws.log.Debug().Str("type", msg.Type).Msg("unknown message type")
	}
}

func (ws *wsSession) decode(msg inboundMessage, out any) bool {
	if err := json.Unmarshal(msg.Payload, out); err != nil {
		ws.log.Debug().Err(err).Str("type", msg.Type).Msg("invalid payload")
		ws.replyError(fmt.Sprintf("invalid %s payload", msg.Type))
		return false
	}
	return true
}

func (ws *wsSession) replyError(message string) {
	_ = ws.lc.send("error", errorDTO{Message: message})
}

// bindLocalWallet binds the server keypair to a room with no wallet yet.
func (ws *wsSession) bindLocalWallet() {
	local := ws.app.localSigner
	if local == nil {
		return
	}
	if _, bound := ws.room.Wallet(); bound {
		return
	}
	ws.room.BindWallet(game.WalletBinding{Address: local.PublicKey(), Signer: local})
	go ws.refreshBalance(local.PublicKey())
}

func (ws *wsSession) connectWallet(address string) {
	pub, err := ledger.ParsePublicKey(address)
	if err != nil {
		ws.replyError("invalid wallet address")
		return
	}
	if ws.signer != nil {
		ws.signer.Close()
	}
	ws.signer = NewRemoteSigner(pub, ws.lc.send)
	ws.room.BindWallet(game.WalletBinding{Address: pub, Signer: ws.signer})
	go ws.refreshBalance(pub)
}

// disconnectWallet drops the wallet this connection bound. Bindings made by
// other connections, or the server keypair, are left alone.
func (ws *wsSession) disconnectWallet() {
	if ws.signer == nil {
		return
	}
	ws.room.ReleaseSigner(ws.signer)
	ws.signer.Close()
	ws.signer = nil
}

func (ws *wsSession) resolveSignature(in signResponseDTO) {
	if ws.signer == nil {
		return
	}
	sig, err := parseWalletSignature(in.Signature)
	if err != nil {
		ws.log.Debug().Err(err).Msg("bad signature from wallet")
		ws.signer.Cancel(in.RequestID)
		return
	}
	if !ws.signer.Resolve(in.RequestID, sig) {
		ws.log.Debug().Str("request", in.RequestID).Msg("response for unknown sign request")
	}
}

// parseWalletSignature accepts base58 (wallet adapters) or base64.
func parseWalletSignature(s string) (ledger.Signature, error) {
	if sig, err := ledger.ParseSignature(s); err == nil {
		return sig, nil
	}
	var sig ledger.Signature
	raw, err := base64.StdEncoding.DecodeString(s)
	if err != nil || len(raw) != ledger.SignatureSize {
		return sig, fmt.Errorf("signature is neither base58 nor base64 of %d bytes", ledger.SignatureSize)
	}
	copy(sig[:], raw)
	return sig, nil
}

func (ws *wsSession) refreshBalance(pub ledger.PublicKey) {
	if ws.app.ledger == nil {
		return
	}
	ctx, cancel := context.WithTimeout(ws.ctx, balanceTimeout)
	defer cancel()
	lamports, err := ws.app.ledger.Balance(ctx, pub)
	if err != nil {
		ws.log.Warn().Err(err).Str("wallet", pub.String()).Msg("balance lookup")
		return
	}
	ws.room.SetWalletBalance(pub, lamports)
}
