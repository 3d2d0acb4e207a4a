package utilities

import (
	"crypto/rand"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/segmentio/ksuid"
)

// NewKSUID generates a new globally unique KSUID string.
func NewKSUID() string {
	return ksuid.New().String()
}

// NewSnowflakeID generates a snowflake ID string using a node ID from
// the environment variable SNOWFLAKE_NODE. If the variable is absent or
// invalid it defaults to node 1.
func NewSnowflakeID() string {
	nodeEnv := os.Getenv("SNOWFLAKE_NODE")
	if nodeEnv == "" {
		return NewSnowflakeIDWithNode(1)
	}
	nodeID, err := strconv.ParseInt(nodeEnv, 10, 64)
	if err != nil {
		return NewSnowflakeIDWithNode(1)
	}
	return NewSnowflakeIDWithNode(nodeID)
}

// NewSnowflakeIDWithNode generates a snowflake ID string using the provided node ID.
// If the node cannot be initialized, it falls back to a KSUID string.
func NewSnowflakeIDWithNode(nodeID int64) string {
	node, err := snowflake.NewNode(nodeID)
	if err != nil {
		return NewKSUID()
	}
	return node.Generate().String()
}

// orderNumberCharset excludes I, O, 0 and 1 to avoid transcription mistakes
// when customers read order numbers back over the phone.
const orderNumberCharset = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

// NewOrderNumber generates a public order number of the form
// ORD-YYYYMMDD-XXXXXXXX where the suffix is 8 random uppercase characters.
func NewOrderNumber(now time.Time) string {
	b := make([]byte, 8)
	if _, err := rand.Read(b); err != nil {
		// rand failure is effectively impossible; fall back to a ksuid tail
		k := strings.ToUpper(ksuid.New().String())
		return "ORD-" + now.Format("20060102") + "-" + k[len(k)-8:]
	}
	for i := range b {
		b[i] = orderNumberCharset[int(b[i])%len(orderNumberCharset)]
	}
	return "ORD-" + now.Format("20060102") + "-" + string(b)
}
