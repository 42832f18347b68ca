/*
Package randx provides functions for generating random identifiers.

It generates UUID request identifiers used to correlate join requests with their
acknowledgments, and short Base62 suffixes for demo room names.
*/
package randx

import (
	"crypto/rand"
	"fmt"
	"math/big"

	"github.com/google/uuid"
)

const (
	// Base62Chars defines the character set used for Base62 encoding (0-9, A-Z, a-z).
	Base62Chars = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz"

	// Base62Len is the total number of characters in the Base62 character set (62).
	Base62Len = int64(len(Base62Chars))

	// SuffixLength is the fixed length of generated Base62 suffixes.
	SuffixLength = 6
)

// RequestID generates a UUID v4 string used to correlate an outbound request
// with the single acknowledgment the server sends back for it.
func RequestID() string {
	return uuid.New().String()
}

// Suffix generates a Base62 string of SuffixLength characters using a
// cryptographically secure random number generator.
func Suffix() (string, error) {
	result := make([]byte, SuffixLength)

	for i := 0; i < SuffixLength; i++ {
		num, err := rand.Int(rand.Reader, big.NewInt(Base62Len))
		if err != nil {
			return "", fmt.Errorf("failed to generate random suffix: %v", err)
		}

		result[i] = Base62Chars[num.Int64()]
	}

	return string(result), nil
}

// DemoRoomName generates a room name for the demo command, with a "Demo_"
// prefix followed by a random Base62 suffix.
func DemoRoomName() (string, error) {
	suffix, err := Suffix()
	if err != nil {
		return "", err
	}

	return "Demo_" + suffix, nil
}
