package delivery_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/language"

	"github.com/riskhub/notify/pkg/delivery"
)

func TestConfig(t *testing.T) {
	t.Parallel()

	cfg := delivery.DefaultConfig()
	loc, err := cfg.Location()
	require.NoError(t, err)
	assert.Equal(t, "UTC", loc.String())

	tag, err := cfg.LanguageTag()
	require.NoError(t, err)
	assert.Equal(t, language.Spanish, tag)

	cfg.Timezone = "Mars/Olympus"
	_, err = cfg.Location()
	assert.ErrorIs(t, err, delivery.ErrInvalidConfig)

	cfg.Language = "not a language tag"
	_, err = cfg.LanguageTag()
	assert.ErrorIs(t, err, delivery.ErrInvalidConfig)
}
