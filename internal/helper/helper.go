package helper

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"log"
	"regexp"
	"strconv"
	"time"
)

func GenerateRandomID() string {
	b := make([]byte, 8)
	rand.Read(b)
	return hex.EncodeToString(b)
}

// ContentID derives a stable identifier from the given parts, so the same
// observation always produces the same id.
func ContentID(prefix string, parts ...string) string {
	h := sha256.New()
	for _, p := range parts {
		h.Write([]byte(p))
		h.Write([]byte{0})
	}
	return prefix + "-" + hex.EncodeToString(h.Sum(nil))[:16]
}

func ParseDuration(input string, defaultValue string) time.Duration {
	re := regexp.MustCompile(`(\d+)([smhdM])`)
	matches := re.FindAllStringSubmatch(input, -1)

	if len(matches) == 0 {
		log.Printf("invalid duration string: %s", input)
		return ParseDuration(defaultValue, "1s")
	}

	var total time.Duration
	for _, match := range matches {
		value, _ := strconv.Atoi(match[1])
		unit := match[2]

		switch unit {
		case "s":
			total += time.Duration(value) * time.Second
		case "m":
			total += time.Duration(value) * time.Minute
		case "h":
			total += time.Duration(value) * time.Hour
		case "d":
			total += time.Duration(value) * 24 * time.Hour
		case "M":
			total += time.Duration(value) * 24 * time.Hour * 30
		}
	}

	return total
}
