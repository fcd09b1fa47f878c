// Package filter narrows docker list rows and browse rows.
//
// A filter is either plain text, matched case-insensitively against the
// columns a row prints, or a comma separated list of criteria such as
// `status~up,age>2d` or `repo=nginx,size>=100MB` that must all hold.
package filter

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/docker/go-units"

	"shellkit/internal/docker"
)

// Field is a column criteria can test.
type Field string

const (
	FieldID     Field = "id"
	FieldName   Field = "name"
	FieldImage  Field = "image"
	FieldStatus Field = "status"
	FieldRepo   Field = "repo"
	FieldTag    Field = "tag"
	FieldSize   Field = "size"
	FieldAge    Field = "age"
)

// Op is a comparison operator.
type Op string

const (
	OpEqual        Op = "="
	OpNotEqual     Op = "!="
	OpGreater      Op = ">"
	OpLess         Op = "<"
	OpGreaterEqual Op = ">="
	OpLessEqual    Op = "<="
	OpContains     Op = "~"
	OpNotContains  Op = "!~"
	OpRegex        Op = "=~"
)

// Two-character operators come first in the alternation.
var criterionPattern = regexp.MustCompile(`^([A-Za-z]+)\s*(>=|<=|!=|!~|=~|=|>|<|~)\s*(.*)$`)

// Criterion is one `field op value` test.
type Criterion struct {
	Field Field
	Op    Op
	Value string

	num float64
	re  *regexp.Regexp
}

// Filter is a parsed filter expression. The zero value and nil match
// everything.
type Filter struct {
	Search   string
	Criteria []Criterion
}

// New returns an empty filter.
func New() *Filter {
	return &Filter{}
}

// Parse parses a filter expression. Input without any operator character is
// a plain search.
func Parse(input string) (*Filter, error) {
	input = strings.TrimSpace(input)
	f := New()
	if input == "" {
		return f, nil
	}
	if !strings.ContainsAny(input, "=<>~") {
		f.Search = strings.ToLower(input)
		return f, nil
	}

	for _, part := range strings.Split(input, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		c, err := parseCriterion(part)
		if err != nil {
			return nil, err
		}
		f.Criteria = append(f.Criteria, c)
	}
	return f, nil
}

func parseCriterion(s string) (Criterion, error) {
	m := criterionPattern.FindStringSubmatch(s)
	if m == nil {
		return Criterion{}, fmt.Errorf("invalid criterion %q: want <field><op><value>", s)
	}
	c := Criterion{Field: Field(strings.ToLower(m[1])), Op: Op(m[2]), Value: strings.TrimSpace(m[3])}
	if c.Value == "" {
		return Criterion{}, fmt.Errorf("invalid criterion %q: missing value", s)
	}

	switch c.Field {
	case FieldAge, FieldSize:
		if c.Op == OpContains || c.Op == OpNotContains || c.Op == OpRegex {
			return Criterion{}, fmt.Errorf("%s does not support %s", c.Field, c.Op)
		}
		if c.Field == FieldAge {
			d, err := parseAge(c.Value)
			if err != nil {
				return Criterion{}, fmt.Errorf("age %q: %w", c.Value, err)
			}
			c.num = float64(d)
		} else {
			n, err := units.FromHumanSize(c.Value)
			if err != nil {
				return Criterion{}, fmt.Errorf("size %q: %w", c.Value, err)
			}
			c.num = float64(n)
		}
	case FieldID, FieldName, FieldImage, FieldStatus, FieldRepo, FieldTag:
		switch c.Op {
		case OpGreater, OpLess, OpGreaterEqual, OpLessEqual:
			return Criterion{}, fmt.Errorf("%s does not support %s", c.Field, c.Op)
		case OpContains, OpNotContains:
			c.re = regexp.MustCompile("(?i)" + regexp.QuoteMeta(c.Value))
		case OpRegex:
			re, err := regexp.Compile(c.Value)
			if err != nil {
				return Criterion{}, fmt.Errorf("%s pattern: %w", c.Field, err)
			}
			c.re = re
		}
	default:
		return Criterion{}, fmt.Errorf("unknown field %q (want id, name, image, status, repo, tag, size or age)", m[1])
	}
	return c, nil
}

// ageUnits extends time.ParseDuration with the units browse prints ages in.
var ageUnits = []struct {
	suffix string
	unit   time.Duration
}{
	{"mo", 30 * 24 * time.Hour},
	{"y", 365 * 24 * time.Hour},
	{"w", 7 * 24 * time.Hour},
	{"d", 24 * time.Hour},
}

func parseAge(s string) (time.Duration, error) {
	for _, u := range ageUnits {
		if n, ok := strings.CutSuffix(s, u.suffix); ok {
			v, err := strconv.ParseFloat(n, 64)
			if err != nil {
				return 0, err
			}
			return time.Duration(v * float64(u.unit)), nil
		}
	}
	return time.ParseDuration(s)
}

// row is the column view of one list line.
type row struct {
	text    map[Field]string
	age     time.Duration
	size    int64
	hasSize bool
}

func containerRow(c docker.ContainerInfo, now time.Time) row {
	return row{
		text: map[Field]string{
			FieldID:     c.ID,
			FieldImage:  c.Image,
			FieldStatus: c.Status,
			FieldName:   c.Names,
		},
		age: now.Sub(c.Created),
	}
}

func imageRow(img docker.ImageInfo, now time.Time) row {
	ref := img.Ref()
	return row{
		text: map[Field]string{
			FieldID:    img.ID,
			FieldRepo:  img.Repository,
			FieldTag:   img.Tag,
			FieldSize:  img.Size,
			FieldName:  ref,
			FieldImage: ref,
		},
		age:     now.Sub(img.Created),
		size:    img.SizeBytes,
		hasSize: true,
	}
}

func (f *Filter) match(r row) bool {
	if f.Search != "" {
		for _, v := range r.text {
			if strings.Contains(strings.ToLower(v), f.Search) {
				return true
			}
		}
		return false
	}
	for _, c := range f.Criteria {
		if !c.match(r) {
			return false
		}
	}
	return true
}

// match reports whether r satisfies c. A row without the tested column,
// such as a container under repo=nginx, never matches.
func (c Criterion) match(r row) bool {
	switch c.Field {
	case FieldAge:
		return compare(float64(r.age), c.Op, c.num)
	case FieldSize:
		return r.hasSize && compare(float64(r.size), c.Op, c.num)
	}

	v, ok := r.text[c.Field]
	if !ok {
		return false
	}
	switch c.Op {
	case OpEqual:
		return strings.EqualFold(v, c.Value)
	case OpNotEqual:
		return !strings.EqualFold(v, c.Value)
	case OpContains, OpRegex:
		return c.re.MatchString(v)
	case OpNotContains:
		return !c.re.MatchString(v)
	}
	return false
}

func compare(a float64, op Op, b float64) bool {
	switch op {
	case OpEqual:
		return a == b
	case OpNotEqual:
		return a != b
	case OpGreater:
		return a > b
	case OpLess:
		return a < b
	case OpGreaterEqual:
		return a >= b
	case OpLessEqual:
		return a <= b
	}
	return false
}

// Containers returns the containers matching f.
func (f *Filter) Containers(cs []docker.ContainerInfo) []docker.ContainerInfo {
	if f.IsEmpty() {
		return cs
	}
	now := time.Now()
	var out []docker.ContainerInfo
	for _, c := range cs {
		if f.match(containerRow(c, now)) {
			out = append(out, c)
		}
	}
	return out
}

// Images returns the images matching f.
func (f *Filter) Images(imgs []docker.ImageInfo) []docker.ImageInfo {
	if f.IsEmpty() {
		return imgs
	}
	now := time.Now()
	var out []docker.ImageInfo
	for _, img := range imgs {
		if f.match(imageRow(img, now)) {
			out = append(out, img)
		}
	}
	return out
}

// IsEmpty reports whether f matches everything.
func (f *Filter) IsEmpty() bool {
	return f == nil || (f.Search == "" && len(f.Criteria) == 0)
}

// String renders f back in the input syntax.
func (f *Filter) String() string {
	if f.IsEmpty() {
		return ""
	}
	if f.Search != "" {
		return f.Search
	}
	parts := make([]string, len(f.Criteria))
	for i, c := range f.Criteria {
		parts[i] = string(c.Field) + string(c.Op) + c.Value
	}
	return strings.Join(parts, ",")
}
