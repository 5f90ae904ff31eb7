package memory

import (
	"fmt"
	"sort"

	"github.com/joho/godotenv"
)

// ReadDotenv parses a .env style file into pairs sorted by key.
func ReadDotenv(path string) ([]Pair, error) {
	vars, err := godotenv.Read(path)
	if err != nil {
		return nil, fmt.Errorf("reading dotenv file: %w", err)
	}

	pairs := make([]Pair, 0, len(vars))
	for k, v := range vars {
		pairs = append(pairs, Pair{Key: k, Value: v})
	}
	sort.Slice(pairs, func(i, j int) bool {
		return pairs[i].Key < pairs[j].Key
	})
	return pairs, nil
}
