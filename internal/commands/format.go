package commands

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/susu3304/taru/internal/barrel"
	"golang.org/x/text/message"
)

// Formatter renders accounting results as chat replies.
type Formatter struct {
	p *message.Printer
}

func NewFormatter(p *message.Printer) *Formatter {
	return &Formatter{p: p}
}

func (f *Formatter) volume(v float64) string {
	return f.p.Sprintf("%.2f L", v)
}

func (f *Formatter) money(v float64) string {
	return f.p.Sprintf("%.0f 円", v)
}

func (f *Formatter) Session(s barrel.Session) string {
	var b strings.Builder
	label := s.Label
	if label == "" {
		label = "(無題)"
	}
	fmt.Fprintf(&b, "樽「%s」 購入者: %s\n", label, s.Payer)
	fmt.Fprintf(&b, "価格: %s / 容量: %s (単価 %s/L)\n", f.money(s.UnitPrice), f.volume(s.NominalVolume), f.money(s.NominalPricePerUnit()))
	return b.String()
}

// Settlement renders per-participant consumption and owed amounts, biggest
// debt first. names resolves participant ids; unknown ids are shown raw.
func (f *Formatter) Settlement(rec barrel.HistoryRecord, names map[string]string) string {
	var b strings.Builder
	state := "精算結果"
	if rec.Open() {
		state = "途中経過"
	}
	fmt.Fprintf(&b, "【%s】%s (購入者: %s)\n", state, rec.Label, rec.Payer)
	fmt.Fprintf(&b, "単価: %s/L\n", f.money(rec.EffectivePricePerUnit))

	ids := make([]string, 0, len(rec.Owed))
	for id := range rec.Owed {
		ids = append(ids, id)
	}
	sort.SliceStable(ids, func(i, j int) bool {
		if rec.Owed[ids[i]] != rec.Owed[ids[j]] {
			return rec.Owed[ids[i]] > rec.Owed[ids[j]]
		}
		return displayName(ids[i], names) < displayName(ids[j], names)
	})

	if len(ids) == 0 {
		b.WriteString("まだ誰も飲んでいません\n")
		return b.String()
	}
	for _, id := range ids {
		fmt.Fprintf(&b, "・%s: %s → %s\n", displayName(id, names), f.volume(rec.Consumed[id]), f.money(rec.Owed[id]))
	}
	return b.String()
}

func (f *Formatter) Leaderboard(ps []barrel.Participant) string {
	if len(ps) == 0 {
		return "参加者がいません"
	}
	var b strings.Builder
	b.WriteString("ランキング:\n")
	for i, p := range ps {
		fmt.Fprintf(&b, "%d. %s %s\n", i+1, p.Name, f.volume(p.TotalConsumed))
	}
	return b.String()
}

// History lists at most limit records, newest first.
func (f *Formatter) History(records []barrel.HistoryRecord, limit int) string {
	if len(records) == 0 {
		return "履歴はありません"
	}
	var b strings.Builder
	b.WriteString("履歴:\n")
	for i, rec := range records {
		if i == limit {
			fmt.Fprintf(&b, "…ほか %d 件\n", len(records)-limit)
			break
		}
		status := rec.ClosedAt.Format("2006-01-02 15:04")
		if rec.Open() {
			status = "開催中"
		}
		var total float64
		for _, v := range rec.Consumed {
			total += v
		}
		fmt.Fprintf(&b, "・%s %s (購入者: %s) %s / %s\n", status, rec.Label, rec.Payer, f.volume(total), f.volume(rec.NominalVolume))
	}
	return b.String()
}

// ErrorMessage turns an accounting error into a user-facing reply.
func ErrorMessage(err error) string {
	var ve *barrel.ValidationError
	switch {
	case errors.Is(err, barrel.ErrSessionOpen):
		return "既に樽のセッションが開いています"
	case errors.Is(err, barrel.ErrNoSession):
		return "開いている樽のセッションがありません"
	case barrel.IsNotFound(err):
		return "参加者が見つかりません。/barrel join で参加登録してください"
	case errors.As(err, &ve):
		return fmt.Sprintf("%s が不正です: %s", ve.Field, ve.Message)
	default:
		return "処理に失敗しました"
	}
}

func displayName(id string, names map[string]string) string {
	if name, ok := names[id]; ok {
		return name
	}
	return id
}
