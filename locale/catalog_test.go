package locale

import (
	"testing"
	"testing/fstest"

	"github.com/goliatone/go-svaroles/pkg/types"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/language"
)

func TestCatalog_DefaultMessages(t *testing.T) {
	c, err := NewDefault(language.English)
	require.NoError(t, err)

	label, ok := types.IntegrationLabel(c.Localizer("en-US"))
	require.True(t, ok)
	require.Equal(t, "Integration", label)

	label, ok = types.IntegrationLabel(c.Localizer("fr-CA"))
	require.True(t, ok)
	require.Equal(t, "Intégration", label)

	require.ElementsMatch(t, []language.Tag{language.English, language.French}, c.Languages())
}

func TestCatalog_FallbackAndMisses(t *testing.T) {
	c := New(language.English)
	require.NoError(t, c.Set(language.English, "Role Ten", "Role ten"))
	require.NoError(t, c.Set(language.English, "quota", "100% of seats"))
	require.NoError(t, c.Set(language.German, "Role Ten", "Rolle zehn"))

	de := c.Localizer("de")
	value, ok := de.Translate("Role Ten")
	require.True(t, ok)
	require.Equal(t, "Rolle zehn", value)

	value, ok = de.Translate("quota")
	require.True(t, ok, "missing keys fall back to the fallback language")
	require.Equal(t, "100% of seats", value)

	_, ok = de.Translate("unknown")
	require.False(t, ok)
	require.Equal(t, "unknown", types.Localize(de, "unknown"))

	require.Equal(t, language.English, c.Localizer("").(*Localizer).Tag())
	require.Equal(t, language.English, c.Localizer("not a locale!").(*Localizer).Tag())
	require.Equal(t, language.English, c.Localizer("ja").(*Localizer).Tag())

	require.Error(t, c.Set(language.English, " ", "blank"))
}

func TestCatalog_LoadFSErrors(t *testing.T) {
	c := New(language.English)
	require.Error(t, c.LoadFS(fstest.MapFS{}, "missing.json"))
	require.Error(t, c.LoadFS(fstest.MapFS{"m.json": {Data: []byte("{")}}, "m.json"))
	require.Error(t, c.LoadFS(fstest.MapFS{"m.json": {Data: []byte(`{"??":{"a":"b"}}`)}}, "m.json"))
}
