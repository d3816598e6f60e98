// Package validation содержит функции валидации входных данных.
package validation

import (
	"strconv"
	"strings"
)

// NormalizeAmount проверяет, что текст является строго положительным
// десятичным числом, и возвращает его в канонической записи.
// Запятая принимается как десятичный разделитель; знак и экспонента — нет.
func NormalizeAmount(text string) (string, bool) {
	s := strings.TrimSpace(text)
	s = strings.ReplaceAll(s, ",", ".")
	if s == "" {
		return "", false
	}

	dots := 0
	for _, r := range s {
		if r == '.' {
			dots++
			continue
		}
		if r < '0' || r > '9' {
			return "", false
		}
	}
	if dots > 1 {
		return "", false
	}

	v, err := strconv.ParseFloat(s, 64)
	if err != nil || v <= 0 {
		return "", false
	}

	// Каноническая запись: без хвостовых нулей дробной части и ведущих нулей.
	if strings.Contains(s, ".") {
		s = strings.TrimRight(s, "0")
		s = strings.TrimSuffix(s, ".")
	}
	s = strings.TrimLeft(s, "0")
	if s == "" || strings.HasPrefix(s, ".") {
		s = "0" + s
	}

	return s, true
}
