// Package user generates synthetic user records and encodes them for publishing.
package user

import (
	"errors"
	"fmt"
	"math"
	mrand "math/rand"
	"sync"
	"time"

	"github.com/bxcodec/faker/v3"
)

const (
	DefaultMinAge = 18
	DefaultMaxAge = 60
)

// NameSource selects how generated names look.
type NameSource string

const (
	NameSourceFaker    NameSource = "faker"    // first names, eg "Alice"
	NameSourceNickname NameSource = "nickname" // adjective-bird handles, eg "brave-falcon"
)

var ErrInvalidAgeRange = errors.New("invalid age range")

// faker draws from a package-level source, so each draw swaps in the caller's own.
var fakerMu sync.Mutex

// User is a synthetic record. It is built right before a send and discarded after it.
type User struct {
	Name string `json:"name"`
	Age  int32  `json:"age"`
}

func (u User) String() string {
	return fmt.Sprintf("{name:%q, age:%d}", u.Name, u.Age)
}

// GeneratorOptions configures a Generator. Zero values fall back to defaults.
type GeneratorOptions struct {
	MinAge     int
	MaxAge     int // exclusive
	NameSource NameSource
	Seed       int64 // 0 seeds from the clock
}

// Generator produces users with a random name and an age uniformly drawn from [MinAge, MaxAge).
// It is safe for concurrent use.
type Generator struct {
	mu       sync.Mutex
	rnd      *mrand.Rand
	minAge   int
	maxAge   int
	nameFunc func(*mrand.Rand) string
}

// NewGenerator creates a Generator with the given options.
func NewGenerator(opts *GeneratorOptions) (*Generator, error) {
	o := GeneratorOptions{}
	if opts != nil {
		o = *opts
	}
	if o.MinAge == 0 && o.MaxAge == 0 {
		o.MinAge, o.MaxAge = DefaultMinAge, DefaultMaxAge
	}
	if o.MinAge < 0 || o.MaxAge <= o.MinAge || o.MaxAge > math.MaxInt32 {
		return nil, fmt.Errorf("%w: [%d, %d)", ErrInvalidAgeRange, o.MinAge, o.MaxAge)
	}
	if o.Seed == 0 {
		o.Seed = time.Now().UnixNano()
	}

	g := &Generator{
		rnd:    mrand.New(mrand.NewSource(o.Seed)),
		minAge: o.MinAge,
		maxAge: o.MaxAge,
	}

	switch o.NameSource {
	case "", NameSourceFaker:
		g.nameFunc = fakerFirstName
	case NameSourceNickname:
		g.nameFunc = nickname
	default:
		return nil, fmt.Errorf("unknown name source: %s", o.NameSource)
	}

	return g, nil
}

func fakerFirstName(r *mrand.Rand) string {
	fakerMu.Lock()
	defer fakerMu.Unlock()
	faker.SetRandomSource(r)
	return faker.FirstName()
}

// Generate returns a new random User.
func (g *Generator) Generate() User {
	g.mu.Lock()
	defer g.mu.Unlock()
	return User{
		Name: g.nameFunc(g.rnd),
		Age:  int32(g.minAge + g.rnd.Intn(g.maxAge-g.minAge)),
	}
}

// AgeRange returns the configured bounds, max exclusive.
func (g *Generator) AgeRange() (int, int) {
	return g.minAge, g.maxAge
}
