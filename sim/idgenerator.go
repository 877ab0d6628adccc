package sim

import (
	"log"
	"strconv"
	"sync"
	"sync/atomic"

	"github.com/rs/xid"
)

// IDGenerator generates IDs for events.
type IDGenerator interface {
	Generate() string
}

var (
	idGeneratorMutex sync.Mutex
	idGenerator      IDGenerator
)

// UseSequentialIDGenerator makes IDs sequential decimal numbers. This is the
// default and keeps runs reproducible.
func UseSequentialIDGenerator() {
	setIDGenerator(&sequentialIDGenerator{})
}

// UseXIDGenerator makes IDs globally unique xids. Runs are no longer
// reproducible ID-wise.
func UseXIDGenerator() {
	setIDGenerator(xidGenerator{})
}

func setIDGenerator(g IDGenerator) {
	idGeneratorMutex.Lock()
	defer idGeneratorMutex.Unlock()

	if idGenerator != nil {
		log.Panic("cannot change id generator type after using it")
	}

	idGenerator = g
}

// GetIDGenerator returns the ID generator of the process, instantiating the
// sequential generator on first use.
func GetIDGenerator() IDGenerator {
	idGeneratorMutex.Lock()
	defer idGeneratorMutex.Unlock()

	if idGenerator == nil {
		idGenerator = &sequentialIDGenerator{}
	}

	return idGenerator
}

type sequentialIDGenerator struct {
	nextID uint64
}

func (g *sequentialIDGenerator) Generate() string {
	return strconv.FormatUint(atomic.AddUint64(&g.nextID, 1), 10)
}

type xidGenerator struct{}

func (xidGenerator) Generate() string {
	return xid.New().String()
}
