package utils

import "strconv"

// MaxPage bounds the page number so the row offset cannot overflow.
const MaxPage = 100000

// Pagination parses page/limit query values. Invalid or missing values fall
// back to page 1 and defaultLimit; page is capped at MaxPage and limit at maxLimit.
func Pagination(pageStr, limitStr string, defaultLimit, maxLimit int) (page, limit int) {
	page = parseIntDefault(pageStr, 1)
	if page < 1 {
		page = 1
	}
	if page > MaxPage {
		page = MaxPage
	}
	limit = parseIntDefault(limitStr, defaultLimit)
	if limit < 1 {
		limit = defaultLimit
	}
	if maxLimit > 0 && limit > maxLimit {
		limit = maxLimit
	}
	return page, limit
}

func Offset(page, limit int) int {
	if page < 1 || limit < 1 {
		return 0
	}
	if page > MaxPage {
		page = MaxPage
	}
	return (page - 1) * limit
}

func parseIntDefault(s string, def int) int {
	if s == "" {
		return def
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return n
}
