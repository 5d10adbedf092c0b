package health

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/japanese"

	"github.com/alterego/alterego/internal/config"
	"github.com/alterego/alterego/internal/types"
)

func TestTextDecoder_UTF8(t *testing.T) {
	d := NewTextDecoder("shift_jis")

	text, enc := d.Decode([]byte("ステータス: Accepted"))
	assert.Equal(t, "ステータス: Accepted", text)
	assert.Equal(t, "utf-8", enc)

	text, enc = d.Decode(append([]byte{0xEF, 0xBB, 0xBF}, []byte("Status: Proposed")...))
	assert.Equal(t, "Status: Proposed", text)
	assert.Equal(t, "utf-8", enc)
}

func TestTextDecoder_ShiftJISFallback(t *testing.T) {
	raw, err := japanese.ShiftJIS.NewEncoder().Bytes([]byte("ステータス: 承認済み"))
	require.NoError(t, err)

	d := NewTextDecoder("shift_jis", "euc-jp")
	text, enc := d.Decode(raw)

	assert.Equal(t, "ステータス: 承認済み", text)
	assert.Equal(t, "shift_jis", enc)
}

func TestTextDecoder_EUCJPFallback(t *testing.T) {
	raw, err := japanese.EUCJP.NewEncoder().Bytes([]byte("ステータス"))
	require.NoError(t, err)

	d := NewTextDecoder("euc-jp")
	text, enc := d.Decode(raw)

	assert.Equal(t, "ステータス", text)
	assert.Equal(t, "euc-jp", enc)
}

func TestTextDecoder_DefaultChainPicksEUCJP(t *testing.T) {
	d := NewTextDecoder(config.Default().Fitness.Encodings...)

	tests := []struct {
		text string
		want types.LifecycleTag
	}{
		{"ステータス: Accepted", types.TagAccepted},
		{"## ステータス\n承認済み", types.TagAccepted},
		{"ステータス: 提案中", types.TagProposed},
		{"# 0003 ログ基盤\n\n## ステータス\n廃止\n", types.TagDeprecated},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			raw, err := japanese.EUCJP.NewEncoder().Bytes([]byte(tt.text))
			require.NoError(t, err)

			text, enc := d.Decode(raw)
			assert.Equal(t, "euc-jp", enc)
			assert.Equal(t, tt.text, text)
			assert.Equal(t, tt.want, Classify(text))
		})
	}
}

func TestTextDecoder_DefaultChainKeepsShiftJIS(t *testing.T) {
	d := NewTextDecoder(config.Default().Fitness.Encodings...)

	for _, src := range []string{"ステータス: Accepted", "## ステータス\n承認済み"} {
		raw, err := japanese.ShiftJIS.NewEncoder().Bytes([]byte(src))
		require.NoError(t, err)

		text, enc := d.Decode(raw)
		assert.Equal(t, "shift_jis", enc)
		assert.Equal(t, src, text)
	}
}

func TestPlausibility(t *testing.T) {
	assert.Greater(t, plausibility("ステータス"), 0)
	assert.Less(t, plausibility("･ｹ･ﾆ｡ｼ･ｿ･ｹ"), 0)
	assert.Zero(t, plausibility("Status: Accepted"))
}

func TestTextDecoder_Replacement(t *testing.T) {
	d := NewTextDecoder()
	text, enc := d.Decode([]byte{'o', 'k', 0xFF, 0xFE})

	assert.Equal(t, "utf-8-replace", enc)
	assert.Contains(t, text, "ok")
	assert.Contains(t, text, "�")
}

func TestNewTextDecoder_UnknownEncoding(t *testing.T) {
	d := NewTextDecoder("no-such-charset", "shift_jis")
	assert.Equal(t, []string{"shift_jis"}, d.names)
}
