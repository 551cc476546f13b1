package messages_test

import (
	"testing"
	"testing/fstest"

	"github.com/m-mizutani/gt"

	"github.com/cardio-risk/backend/internal/messages"
)

func TestLoadEmbeddedCatalogs(t *testing.T) {
	cats, err := messages.Load("en")
	gt.NoError(t, err).Required()

	gt.Value(t, cats.Locales()).Equal([]string{"en", "ru"})

	for _, locale := range cats.Locales() {
		cat := cats.Lookup(locale)
		gt.Value(t, cat.Locale).Equal(locale)
		for _, code := range messages.FactorCodes {
			gt.Bool(t, cat.Factor(code) != "").True()
		}
	}
}

func TestMatch(t *testing.T) {
	cats, err := messages.Load("en")
	gt.NoError(t, err).Required()

	tests := []struct {
		name     string
		explicit string
		header   string
		want     string
	}{
		{name: "nothing requested", want: "en"},
		{name: "accept-language russian", header: "ru-RU,ru;q=0.9,en;q=0.8", want: "ru"},
		{name: "explicit wins over header", explicit: "en", header: "ru", want: "en"},
		{name: "explicit russian", explicit: "ru", want: "ru"},
		{name: "unsupported falls back", header: "de-DE", want: "en"},
		{name: "garbage header", header: ";;;", want: "en"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gt.Value(t, cats.Match(tt.explicit, tt.header).Locale).Equal(tt.want)
		})
	}
}

func TestLookupUnknownLocale(t *testing.T) {
	cats, err := messages.Load("ru")
	gt.NoError(t, err).Required()

	gt.Value(t, cats.Lookup("fr").Locale).Equal("ru")
	gt.Value(t, cats.Default().Locale).Equal("ru")
}

func TestLoadFSRejectsIncompleteCatalog(t *testing.T) {
	fsys := fstest.MapFS{
		"loc/en.toml": &fstest.MapFile{Data: []byte(`
locale = "en"
reassurance = "fine"
caution = "not fine"

[factors]
cholesterol = "Cholesterol level is high!"
`)},
	}

	_, err := messages.LoadFS(fsys, "loc", "en")
	gt.Error(t, err).Is(messages.ErrMissingMessage)
}

func TestLoadFSRequiresDefaultLocale(t *testing.T) {
	_, err := messages.Load("fr")
	gt.Value(t, err).NotNil()
}
