package commands

import (
	"context"
	"fmt"
	"strings"

	"github.com/bwmarrin/discordgo"
	"github.com/rs/zerolog"
	"github.com/susu3304/taru/internal/barrel"
)

const historyLimit = 5

type BarrelHandler struct {
	svc      *barrel.Service
	registry *Registry
	format   *Formatter
	logger   zerolog.Logger
}

func NewBarrelHandler(svc *barrel.Service, registry *Registry, format *Formatter, logger zerolog.Logger) *BarrelHandler {
	return &BarrelHandler{
		svc:      svc,
		registry: registry,
		format:   format,
		logger:   logger.With().Str("handler", "barrel").Logger(),
	}
}

func (h *BarrelHandler) Handle(s *discordgo.Session, i *discordgo.InteractionCreate) {
	data := i.ApplicationCommandData()
	if len(data.Options) == 0 {
		respondText(s, i, "サブコマンドが指定されていません")
		return
	}

	user := interactionUser(i)
	if user == nil {
		respondText(s, i, "ユーザーを特定できませんでした")
		return
	}
	displayName := user.Username
	if i.Member != nil && i.Member.Nick != "" {
		displayName = i.Member.Nick
	}

	reply := h.Execute(context.Background(), user.ID, displayName, data.Options[0])
	respondText(s, i, reply)
}

// Execute runs one /barrel subcommand for userID and returns the reply text.
func (h *BarrelHandler) Execute(ctx context.Context, userID, displayName string, sub *discordgo.ApplicationCommandInteractionDataOption) string {
	h.logger.Debug().Str("user_id", userID).Str("subcommand", sub.Name).Msg("Barrel command received")

	switch sub.Name {
	case "join":
		return h.join(userID, displayName, sub)
	case "drink":
		amount := getNumberOption(sub.Options, "amount")
		if amount == nil {
			return "量の指定が必要です"
		}
		return h.drink(userID, *amount)
	case "open":
		payer := getStringOption(sub.Options, "payer")
		price := getNumberOption(sub.Options, "price")
		volume := getNumberOption(sub.Options, "volume")
		if payer == nil || price == nil || volume == nil {
			return "payer, price, volume の指定が必要です"
		}
		label := ""
		if l := getStringOption(sub.Options, "label"); l != nil {
			label = *l
		}
		sess, err := h.svc.OpenSession(label, *payer, *price, *volume)
		if err != nil {
			return ErrorMessage(err)
		}
		return "樽のセッションを開始しました\n" + h.format.Session(sess)
	case "close":
		rec, err := h.svc.CloseSession(ctx)
		if err != nil {
			return ErrorMessage(err)
		}
		return h.format.Settlement(rec, h.names())
	case "status":
		history := h.svc.ListHistory()
		if len(history) == 0 || !history[0].Open() {
			return ErrorMessage(barrel.ErrNoSession)
		}
		return h.format.Settlement(history[0], h.names())
	case "leaderboard":
		return h.format.Leaderboard(h.svc.Leaderboard())
	case "history":
		return h.format.History(h.svc.ListHistory(), historyLimit)
	default:
		return "未知のサブコマンドです"
	}
}

func (h *BarrelHandler) join(userID, displayName string, sub *discordgo.ApplicationCommandInteractionDataOption) string {
	name := displayName
	if opt := getStringOption(sub.Options, "name"); opt != nil && strings.TrimSpace(*opt) != "" {
		name = *opt
	}

	var p barrel.Participant
	_, created, err := h.registry.GetOrCreate(userID,
		func(id string) bool {
			var ok bool
			p, ok = h.svc.Participant(id)
			return ok
		},
		func() (string, error) {
			var err error
			p, err = h.svc.RegisterParticipant(name)
			return p.ID, err
		},
	)
	if err != nil {
		return ErrorMessage(err)
	}
	if !created {
		return fmt.Sprintf("既に %s として参加しています", p.Name)
	}
	return fmt.Sprintf("%s を参加者として登録しました", p.Name)
}

func (h *BarrelHandler) drink(userID string, amount float64) string {
	id, ok := h.registry.Get(userID)
	if !ok {
		return ErrorMessage(barrel.ErrNotFound)
	}
	p, err := h.svc.RecordConsumption(id, amount)
	if err != nil {
		if barrel.IsNotFound(err) {
			h.registry.Remove(userID)
		}
		return ErrorMessage(err)
	}
	return fmt.Sprintf("%s: +%s (合計 %s)", p.Name, h.format.volume(amount), h.format.volume(p.TotalConsumed))
}

func (h *BarrelHandler) names() map[string]string {
	names := make(map[string]string)
	for _, p := range h.svc.ListParticipants() {
		names[p.ID] = p.Name
	}
	return names
}
