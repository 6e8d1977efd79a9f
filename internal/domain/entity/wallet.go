package entity

import "strings"

func equalFoldAddr(a, b string) bool {
	return a != "" && strings.EqualFold(a, b)
}
