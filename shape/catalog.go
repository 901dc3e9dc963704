package shape

import (
	"fmt"
	"math/rand/v2"
	"slices"
)

// Kind identifies a shape variant.
type Kind uint8

const (
	KindI Kind = iota + 1
	KindO
	KindT
	KindS
	KindZ
	KindJ
	KindL
)

var kindNames = map[Kind]string{
	KindI: "I",
	KindO: "O",
	KindT: "T",
	KindS: "S",
	KindZ: "Z",
	KindJ: "J",
	KindL: "L",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("Kind(%d)", uint8(k))
}

// ParseKind resolves a single-letter name such as "T".
func ParseKind(s string) (Kind, error) {
	for k, name := range kindNames {
		if name == s {
			return k, nil
		}
	}
	return 0, fmt.Errorf("shape: unknown kind %q", s)
}

type definition struct {
	spawn []Offset
	turns int
}

// Spawn offsets are relative to the pivot with rows growing upward.
var catalog = map[Kind]definition{
	KindI: {spawn: []Offset{{0, -1}, {0, 0}, {0, 1}, {0, 2}}, turns: 2},
	KindO: {spawn: []Offset{{0, 0}, {0, 1}, {1, 0}, {1, 1}}, turns: 1},
	KindT: {spawn: []Offset{{0, -1}, {0, 0}, {0, 1}, {1, 0}}, turns: 4},
	KindS: {spawn: []Offset{{0, -1}, {0, 0}, {1, 0}, {1, 1}}, turns: 2},
	KindZ: {spawn: []Offset{{1, -1}, {1, 0}, {0, 0}, {0, 1}}, turns: 2},
	KindJ: {spawn: []Offset{{1, -1}, {0, -1}, {0, 0}, {0, 1}}, turns: 4},
	KindL: {spawn: []Offset{{1, 1}, {0, -1}, {0, 0}, {0, 1}}, turns: 4},
}

// Catalog returns every kind in declaration order.
func Catalog() []Kind {
	return []Kind{KindI, KindO, KindT, KindS, KindZ, KindJ, KindL}
}

// Bag deals kinds in shuffled runs of the full catalog so every kind appears
// once per seven pieces.
type Bag struct {
	rng     *rand.Rand
	pending []Kind
}

// NewBag creates a bag whose shuffles are fully determined by seed.
func NewBag(seed uint64) *Bag {
	return &Bag{rng: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))}
}

// Next removes and returns the next kind, refilling the bag when empty.
func (b *Bag) Next() Kind {
	b.fill(1)
	k := b.pending[0]
	b.pending = b.pending[1:]
	return k
}

// Peek returns the next n kinds without consuming them.
func (b *Bag) Peek(n int) []Kind {
	b.fill(n)
	return slices.Clone(b.pending[:n])
}

func (b *Bag) fill(n int) {
	for len(b.pending) < n {
		run := Catalog()
		b.rng.Shuffle(len(run), func(i, j int) {
			run[i], run[j] = run[j], run[i]
		})
		b.pending = append(b.pending, run...)
	}
}
