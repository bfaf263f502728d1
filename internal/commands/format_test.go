package commands

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/susu3304/taru/internal/barrel"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

func testFormatter() *Formatter {
	return NewFormatter(message.NewPrinter(language.Japanese))
}

func TestFormatSettlementOrder(t *testing.T) {
	rec := barrel.HistoryRecord{
		Label:                 "IPA",
		Payer:                 "A",
		Consumed:              map[string]float64{"p1": 1, "p2": 3, "p3": 0},
		Owed:                  map[string]float64{"p1": 5, "p2": 15, "p3": 0},
		EffectivePricePerUnit: 5,
		Status:                barrel.StatusClosed,
	}
	got := testFormatter().Settlement(rec, map[string]string{"p1": "A", "p2": "B"})

	b := strings.Index(got, "B: 3.00 L → 15 円")
	a := strings.Index(got, "A: 1.00 L → 5 円")
	raw := strings.Index(got, "p3: 0.00 L → 0 円")
	if b < 0 || a < 0 || raw < 0 || !(b < a && a < raw) {
		t.Errorf("settlement = %q", got)
	}
	if !strings.Contains(got, "精算結果") {
		t.Errorf("closed record should be labelled as a settlement: %q", got)
	}
}

func TestFormatSettlementEmpty(t *testing.T) {
	rec := barrel.HistoryRecord{Status: barrel.StatusOpen, Consumed: map[string]float64{}, Owed: map[string]float64{}}
	got := testFormatter().Settlement(rec, nil)
	if !strings.Contains(got, "途中経過") || !strings.Contains(got, "まだ誰も飲んでいません") {
		t.Errorf("settlement = %q", got)
	}
}

func TestFormatHistoryLimit(t *testing.T) {
	closed := time.Date(2024, 5, 1, 22, 30, 0, 0, time.UTC)
	var records []barrel.HistoryRecord
	for i := 0; i < 7; i++ {
		records = append(records, barrel.HistoryRecord{Label: "keg", Payer: "A", NominalVolume: 10, ClosedAt: closed, Status: barrel.StatusClosed})
	}
	records[0].Status = barrel.StatusOpen

	got := testFormatter().History(records, 5)
	if !strings.Contains(got, "開催中") || !strings.Contains(got, "2024-05-01 22:30") {
		t.Errorf("history = %q", got)
	}
	if !strings.Contains(got, "ほか 2 件") {
		t.Errorf("history should note truncated records: %q", got)
	}
	if got := testFormatter().History(nil, 5); got != "履歴はありません" {
		t.Errorf("empty history = %q", got)
	}
}

func TestErrorMessage(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"open", barrel.ErrSessionOpen, "既に樽のセッションが開いています"},
		{"none", barrel.ErrNoSession, "開いている樽のセッションがありません"},
		{"not found", barrel.ErrNotFound, "参加者が見つかりません。/barrel join で参加登録してください"},
		{"validation", &barrel.ValidationError{Field: "volume", Message: "must be positive"}, "volume が不正です: must be positive"},
		{"other", errors.New("boom"), "処理に失敗しました"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ErrorMessage(tt.err); got != tt.want {
				t.Errorf("ErrorMessage() = %q, want %q", got, tt.want)
			}
		})
	}
}
