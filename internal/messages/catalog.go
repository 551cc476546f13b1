package messages

import (
	"embed"
	"io/fs"
	"path"
	"sort"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"github.com/pelletier/go-toml/v2"
	"github.com/samber/lo"
	"golang.org/x/text/language"
)

//go:embed locales/*.toml
var embedded embed.FS

// Risk factor codes, in the order rules are evaluated.
const (
	FactorCholesterol = "cholesterol"
	FactorSystolic    = "systolic"
	FactorDiastolic   = "diastolic"
	FactorWeight      = "weight"
	FactorGlucose     = "glucose"
	FactorInactivity  = "inactivity"
)

var FactorCodes = []string{
	FactorCholesterol, FactorSystolic, FactorDiastolic,
	FactorWeight, FactorGlucose, FactorInactivity,
}

const DefaultLocale = "en"

var ErrMissingMessage = goerr.New("message catalog is incomplete")

type Labels struct {
	Age         string `toml:"age"`
	Height      string `toml:"height"`
	Weight      string `toml:"weight"`
	Systolic    string `toml:"systolic"`
	Diastolic   string `toml:"diastolic"`
	Cholesterol string `toml:"cholesterol"`
	Glucose     string `toml:"glucose"`
	Smoke       string `toml:"smoke"`
	Alcohol     string `toml:"alcohol"`
	Active      string `toml:"active"`
	Yes         string `toml:"yes"`
	Gender      string `toml:"gender"`
	Male        string `toml:"male"`
	Female      string `toml:"female"`
}

// Catalog holds every user-facing string for one locale.
type Catalog struct {
	Locale      string            `toml:"locale"`
	Title       string            `toml:"title"`
	Subtitle    string            `toml:"subtitle"`
	Probability string            `toml:"probability"`
	Reassurance string            `toml:"reassurance"`
	Caution     string            `toml:"caution"`
	Submit      string            `toml:"submit"`
	Error       string            `toml:"error"`
	Labels      Labels            `toml:"labels"`
	Factors     map[string]string `toml:"factors"`
}

// Factor returns the message for a risk factor code.
func (c *Catalog) Factor(code string) string {
	return c.Factors[code]
}

func (c *Catalog) validate() error {
	if c.Locale == "" {
		return goerr.Wrap(ErrMissingMessage, "locale is required")
	}
	if c.Reassurance == "" || c.Caution == "" {
		return goerr.Wrap(ErrMissingMessage, "headline is missing", goerr.V("locale", c.Locale))
	}
	missing := lo.Filter(FactorCodes, func(code string, _ int) bool {
		return c.Factors[code] == ""
	})
	if len(missing) > 0 {
		return goerr.Wrap(ErrMissingMessage, "risk factor message is missing",
			goerr.V("locale", c.Locale), goerr.V("codes", missing))
	}
	return nil
}

// Catalogs is the set of loaded locales plus the negotiation matcher.
type Catalogs struct {
	byLocale      map[string]*Catalog
	supported     []string
	matcher       language.Matcher
	defaultLocale string
}

// Load reads the catalogs compiled into the binary.
func Load(defaultLocale string) (*Catalogs, error) {
	return LoadFS(embedded, "locales", defaultLocale)
}

// LoadFS reads every *.toml file under dir.
func LoadFS(fsys fs.FS, dir, defaultLocale string) (*Catalogs, error) {
	entries, err := fs.ReadDir(fsys, dir)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to read message catalogs", goerr.V("dir", dir))
	}

	byLocale := make(map[string]*Catalog)
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".toml") {
			continue
		}

		file := path.Join(dir, entry.Name())
		data, err := fs.ReadFile(fsys, file)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to read message catalog", goerr.V("file", file))
		}

		var cat Catalog
		if err := toml.Unmarshal(data, &cat); err != nil {
			return nil, goerr.Wrap(err, "failed to parse message catalog", goerr.V("file", file))
		}
		if err := cat.validate(); err != nil {
			return nil, goerr.Wrap(err, "invalid message catalog", goerr.V("file", file))
		}
		if _, dup := byLocale[cat.Locale]; dup {
			return nil, goerr.New("duplicate message catalog", goerr.V("locale", cat.Locale))
		}
		byLocale[cat.Locale] = &cat
	}

	if defaultLocale == "" {
		defaultLocale = DefaultLocale
	}
	if _, ok := byLocale[defaultLocale]; !ok {
		return nil, goerr.New("default locale has no catalog", goerr.V("locale", defaultLocale))
	}

	// The matcher falls back to the first supported tag, so the default goes first.
	others := lo.Without(lo.Keys(byLocale), defaultLocale)
	sort.Strings(others)
	supported := append([]string{defaultLocale}, others...)

	tags := lo.Map(supported, func(l string, _ int) language.Tag {
		return language.Make(l)
	})

	return &Catalogs{
		byLocale:      byLocale,
		supported:     supported,
		matcher:       language.NewMatcher(tags),
		defaultLocale: defaultLocale,
	}, nil
}

func (c *Catalogs) Locales() []string {
	return append([]string(nil), c.supported...)
}

func (c *Catalogs) Default() *Catalog {
	return c.byLocale[c.defaultLocale]
}

// Lookup returns the catalog for an exact locale, or the default.
func (c *Catalogs) Lookup(locale string) *Catalog {
	if cat, ok := c.byLocale[locale]; ok {
		return cat
	}
	return c.Default()
}

// Match picks a catalog from an explicit locale (query parameter, flag)
// and then from an Accept-Language header value.
func (c *Catalogs) Match(explicit, acceptLanguage string) *Catalog {
	var desired []language.Tag
	if explicit != "" {
		if tag, err := language.Parse(explicit); err == nil {
			desired = append(desired, tag)
		}
	}
	if acceptLanguage != "" {
		if tags, _, err := language.ParseAcceptLanguage(acceptLanguage); err == nil {
			desired = append(desired, tags...)
		}
	}
	if len(desired) == 0 {
		return c.Default()
	}

	_, idx, conf := c.matcher.Match(desired...)
	if conf == language.No || idx < 0 || idx >= len(c.supported) {
		return c.Default()
	}
	return c.byLocale[c.supported[idx]]
}
