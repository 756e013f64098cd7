package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDecision(t *testing.T) {
	tests := []struct {
		name          string
		raw           string
		expectErr     bool
		expectAction  Action
		expectReason  string
	}{
		{
			name:         "valid buy",
			raw:          `{"action":"Buy","reasoning":"price below recent average"}`,
			expectAction: ActionBuy,
			expectReason: "price below recent average",
		},
		{
			name:         "valid hold with code fences",
			raw:          "```json\n{\"action\":\"Hold\",\"reasoning\":\"no clear trend\"}\n```",
			expectAction: ActionHold,
			expectReason: "no clear trend",
		},
		{
			name:         "valid sell with surrounding whitespace",
			raw:          "  {\"action\":\"Sell\",\"reasoning\":\"local top\"}  ",
			expectAction: ActionSell,
			expectReason: "local top",
		},
		{
			name:      "not JSON at all",
			raw:       "I think you should buy now!",
			expectErr: true,
		},
		{
			name:      "unknown action",
			raw:       `{"action":"Maybe","reasoning":"unsure"}`,
			expectErr: true,
		},
		{
			name:      "lowercase action rejected",
			raw:       `{"action":"buy","reasoning":"dip"}`,
			expectErr: true,
		},
		{
			name:      "missing reasoning",
			raw:       `{"action":"Buy"}`,
			expectErr: true,
		},
		{
			name:      "blank reasoning",
			raw:       `{"action":"Sell","reasoning":"   "}`,
			expectErr: true,
		},
		{
			name:      "wrong schema type",
			raw:       `{"action":42,"reasoning":"numbers"}`,
			expectErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			decision, err := ParseDecision(tt.raw)

			if tt.expectErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, ErrMalformedDecision)
				assert.Nil(t, decision)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.expectAction, decision.Action)
			assert.Equal(t, tt.expectReason, decision.Reasoning)
			assert.Equal(t, tt.raw, decision.RawReply, "raw reply must be preserved verbatim")
		})
	}
}

func TestHoldDecision(t *testing.T) {
	d := HoldDecision("model reply rejected", `{"action":"Maybe"}`)

	assert.Equal(t, ActionHold, d.Action)
	assert.Equal(t, "model reply rejected", d.Reasoning)
	assert.Equal(t, `{"action":"Maybe"}`, d.RawReply)
}

func TestParseAction(t *testing.T) {
	for _, valid := range []string{"Buy", "Sell", "Hold"} {
		action, err := ParseAction(valid)
		require.NoError(t, err)
		assert.Equal(t, valid, action.String())
	}

	for _, invalid := range []string{"", "BUY", "hold", "Close"} {
		_, err := ParseAction(invalid)
		assert.Error(t, err, "action %q must be rejected", invalid)
	}
}
