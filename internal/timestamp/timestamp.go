package timestamp

import (
	"errors"
	"fmt"
	"path/filepath"
	"regexp"
	"time"
)

// ErrNoTimestamp is returned when no rule matches a file name.
var ErrNoTimestamp = errors.New("no timestamp in file name")

// Rule maps a file-name convention to a time layout. Pattern must have
// exactly one capture group holding the text that Layout parses.
type Rule struct {
	Name    string
	Pattern *regexp.Regexp
	Layout  string
}

// Parser applies rules in order.
type Parser struct {
	rules []Rule
}

// DefaultRules covers the product families handled by this module.
// Day-of-year conventions use the "002" layout element.
var DefaultRules = []Rule{
	{Name: "idps", Pattern: regexp.MustCompile(`_(?:npp|j01|j02)_d(\d{8}_t\d{6})`), Layout: "20060102_t150405"},
	{Name: "modis-fire", Pattern: regexp.MustCompile(`^M[OY]D14\.A(\d{7}\.\d{4})`), Layout: "2006002.1504"},
	{Name: "sips", Pattern: regexp.MustCompile(`^(?:VNP|VJ1|VJ2|MOD|MYD|CLDPROP)\w*\.A(\d{7}\.\d{4})`), Layout: "2006002.1504"},
	{Name: "geocat", Pattern: regexp.MustCompile(`^geocatL[12][\w.-]*?\.(\d{7}\.\d{4})`), Layout: "2006002.1504"},
	{Name: "dbrtn", Pattern: regexp.MustCompile(`^[at]1\.(\d{5}\.\d{4})`), Layout: "06002.1504"},
	{Name: "acspo", Pattern: regexp.MustCompile(`^ACSPO-VIIRS.*_s(\d{12})`), Layout: "200601021504"},
	{Name: "abi", Pattern: regexp.MustCompile(`_s(\d{13})\d*_e`), Layout: "2006002150405"},
	{Name: "eumetsat", Pattern: regexp.MustCompile(`(?:IASI|AVHR|HIRS|AMSUA|MHS)_C_EUMP_(\d{12})`), Layout: "200601021504"},
	{Name: "mersi", Pattern: regexp.MustCompile(`^FY3[A-Z]_MERSI_\w+?_(\d{8}_\d{4})`), Layout: "20060102_1504"},
	{Name: "generic", Pattern: regexp.MustCompile(`_(\d{7}_\d{4})(?:\D|$)`), Layout: "2006002_1504"},
}

// New returns a parser over rules. With no rules it uses DefaultRules.
func New(rules ...Rule) *Parser {
	if len(rules) == 0 {
		rules = DefaultRules
	}
	return &Parser{rules: append([]Rule(nil), rules...)}
}

// Default is the parser over DefaultRules.
var Default = New()

// Parse returns the time encoded in the base name of path.
func (p *Parser) Parse(path string) (time.Time, error) {
	_, t, err := p.Match(path)
	return t, err
}

// Match is like Parse but also returns the name of the rule that matched.
func (p *Parser) Match(path string) (string, time.Time, error) {
	name := filepath.Base(path)
	for _, r := range p.rules {
		m := r.Pattern.FindStringSubmatch(name)
		if len(m) < 2 {
			continue
		}
		t, err := time.ParseInLocation(r.Layout, m[1], time.UTC)
		if err != nil {
			return r.Name, time.Time{}, fmt.Errorf("%s: %s convention: %w", name, r.Name, err)
		}
		return r.Name, t, nil
	}
	return "", time.Time{}, fmt.Errorf("%s: %w", name, ErrNoTimestamp)
}

// Parse uses the Default parser.
func Parse(path string) (time.Time, error) {
	return Default.Parse(path)
}
