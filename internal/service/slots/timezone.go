package slots

import "time"

// fallbackOffsets статические смещения для зон, которые не удалось загрузить из tzdata.
// Используются только как запасной вариант, летнее время не учитывается.
var fallbackOffsets = map[string]int{
	"UTC":                0,
	"Etc/UTC":            0,
	"Asia/Jakarta":       7 * 3600,
	"Asia/Pontianak":     7 * 3600,
	"Asia/Makassar":      8 * 3600,
	"Asia/Jayapura":      9 * 3600,
	"Asia/Singapore":     8 * 3600,
	"Asia/Kuala_Lumpur":  8 * 3600,
	"Asia/Bangkok":       7 * 3600,
	"Asia/Ho_Chi_Minh":   7 * 3600,
	"Asia/Manila":        8 * 3600,
	"Asia/Tokyo":         9 * 3600,
	"Asia/Kolkata":       5*3600 + 30*60,
	"Asia/Dubai":         4 * 3600,
	"Europe/Moscow":      3 * 3600,
	"Australia/Brisbane": 10 * 3600,
	"WIB":                7 * 3600,
	"WITA":               8 * 3600,
	"WIT":                9 * 3600,
}

// ResolveLocation загружает часовой пояс тенанта по имени IANA.
// Если база tzdata не знает имя, берется статическое смещение из таблицы,
// иначе UTC. Второй результат true, если использован запасной вариант.
func ResolveLocation(name string) (*time.Location, bool) {
	if name == "" {
		return time.UTC, true
	}
	if loc, err := time.LoadLocation(name); err == nil {
		return loc, false
	}
	if offset, ok := fallbackOffsets[name]; ok {
		return time.FixedZone(name, offset), true
	}
	return time.UTC, true
}
