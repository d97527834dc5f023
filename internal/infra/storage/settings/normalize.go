package settings

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/m04kA/SMC-BookingEngine/internal/domain"
	"github.com/m04kA/SMC-BookingEngine/pkg/types"
)

// document JSON настроек с нормализованными ключами.
// Старые версии админки писали ключи в camelCase, snake_case и с разным регистром,
// поэтому все ключи приводятся к нижнему регистру без "_" и "-".
type document map[string]any

func normalizeKey(k string) string {
	k = strings.ToLower(k)
	k = strings.ReplaceAll(k, "_", "")
	return strings.ReplaceAll(k, "-", "")
}

func parseDocument(raw []byte) (document, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return document{}, nil
	}

	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()

	var v map[string]any
	if err := dec.Decode(&v); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidDocument, err)
	}
	return toDocument(v), nil
}

func toDocument(v map[string]any) document {
	doc := make(document, len(v))
	for k, val := range v {
		doc[normalizeKey(k)] = val
	}
	return doc
}

// lookup возвращает первое найденное значение среди синонимов
func (d document) lookup(keys ...string) (any, bool) {
	for _, k := range keys {
		if v, ok := d[k]; ok && v != nil {
			return v, true
		}
	}
	return nil, false
}

func (d document) sub(keys ...string) document {
	v, ok := d.lookup(keys...)
	if !ok {
		return document{}
	}
	m, ok := v.(map[string]any)
	if !ok {
		return document{}
	}
	return toDocument(m)
}

func (d document) str(keys ...string) string {
	v, ok := d.lookup(keys...)
	if !ok {
		return ""
	}
	switch t := v.(type) {
	case string:
		return strings.TrimSpace(t)
	case json.Number:
		return t.String()
	}
	return ""
}

func (d document) boolean(def bool, keys ...string) bool {
	v, ok := d.lookup(keys...)
	if !ok {
		return def
	}
	switch t := v.(type) {
	case bool:
		return t
	case string:
		b, err := strconv.ParseBool(strings.TrimSpace(t))
		if err != nil {
			return def
		}
		return b
	case json.Number:
		return t.String() != "0"
	}
	return def
}

func (d document) decimal(keys ...string) decimal.Decimal {
	v, ok := d.lookup(keys...)
	if !ok {
		return decimal.Zero
	}
	var s string
	switch t := v.(type) {
	case json.Number:
		s = t.String()
	case string:
		s = strings.TrimSuffix(strings.TrimSpace(t), "%")
	default:
		return decimal.Zero
	}
	dec, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return dec
}

func (d document) integer(keys ...string) int {
	return int(d.decimal(keys...).IntPart())
}

func (d document) float(keys ...string) *float64 {
	if _, ok := d.lookup(keys...); !ok {
		return nil
	}
	f, _ := d.decimal(keys...).Float64()
	return &f
}

var weekdayKeys = map[string]time.Weekday{
	"sunday": time.Sunday, "sun": time.Sunday, "0": time.Sunday, "7": time.Sunday,
	"monday": time.Monday, "mon": time.Monday, "1": time.Monday,
	"tuesday": time.Tuesday, "tue": time.Tuesday, "tues": time.Tuesday, "2": time.Tuesday,
	"wednesday": time.Wednesday, "wed": time.Wednesday, "3": time.Wednesday,
	"thursday": time.Thursday, "thu": time.Thursday, "thur": time.Thursday, "thurs": time.Thursday, "4": time.Thursday,
	"friday": time.Friday, "fri": time.Friday, "5": time.Friday,
	"saturday": time.Saturday, "sat": time.Saturday, "6": time.Saturday,
}

// normalizeBusinessHours приводит JSON расписания к domain.BusinessHours.
// Дни ищутся как на верхнем уровне документа, так и во вложенном "days"/"schedule".
// День с некорректным временем считается закрытым.
func normalizeBusinessHours(raw []byte, timezone string) (domain.BusinessHours, error) {
	doc, err := parseDocument(raw)
	if err != nil {
		return domain.BusinessHours{}, err
	}

	hours := domain.BusinessHours{Timezone: timezone}
	if tz := doc.str("timezone", "tz", "timezonename"); tz != "" && hours.Timezone == "" {
		hours.Timezone = tz
	}
	if hours.Timezone == "" {
		hours.Timezone = domain.DefaultTimezone
	}

	days := doc.sub("days", "schedule", "weekly", "hours")
	if len(days) == 0 {
		days = doc
	}
	for key, val := range days {
		weekday, ok := weekdayKeys[key]
		if !ok {
			continue
		}
		m, ok := val.(map[string]any)
		if !ok {
			continue
		}
		hours.Days[weekday] = normalizeDay(toDocument(m))
	}

	hours.BlockedDates = normalizeDates(doc, "blockeddates", "holidays", "closeddates", "blocked")

	return hours, nil
}

func normalizeDay(d document) domain.DaySchedule {
	openStr := d.str("open", "opentime", "openat", "start", "from")
	closeStr := d.str("close", "closetime", "closeat", "end", "to")

	isOpen := d.boolean(openStr != "" && closeStr != "", "isopen", "enabled", "active", "working")
	if d.boolean(false, "closed", "isclosed") {
		isOpen = false
	}
	if !isOpen {
		return domain.DaySchedule{}
	}

	open, err := types.NewTimeStringFromString(openStr)
	if err != nil {
		return domain.DaySchedule{}
	}
	closeAt, err := types.NewTimeStringFromString(closeStr)
	if err != nil {
		return domain.DaySchedule{}
	}

	return domain.DaySchedule{IsOpen: true, Open: open, Close: closeAt}
}

func normalizeDates(d document, keys ...string) []string {
	v, ok := d.lookup(keys...)
	if !ok {
		return nil
	}
	list, ok := v.([]any)
	if !ok {
		return nil
	}

	dates := make([]string, 0, len(list))
	for _, item := range list {
		var s string
		switch t := item.(type) {
		case string:
			s = t
		case map[string]any:
			s = toDocument(t).str("date", "day")
		}
		s = strings.TrimSpace(s)
		// "2026-01-01T00:00:00Z" тоже встречается
		if len(s) >= len(domain.DateFormat) {
			s = s[:len(domain.DateFormat)]
		}
		if _, err := time.Parse(domain.DateFormat, s); err != nil {
			continue
		}
		dates = append(dates, s)
	}
	return dates
}

func normalizeChargeType(s string) domain.ChargeType {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "percentage", "percent", "pct", "%":
		return domain.ChargePercentage
	case "fixed", "flat", "amount", "nominal":
		return domain.ChargeFixed
	}
	return domain.ChargeType(s)
}

func normalizeCharge(d document) domain.Charge {
	return domain.Charge{
		Type:  normalizeChargeType(d.str("type", "chargetype", "kind")),
		Value: d.decimal("value", "amount", "percentage", "rate"),
	}
}

// normalizeInvoiceSettings приводит JSON настроек счета к domain.InvoiceSettings
func normalizeInvoiceSettings(raw []byte) (domain.InvoiceSettings, error) {
	doc, err := parseDocument(raw)
	if err != nil {
		return domain.InvoiceSettings{}, err
	}

	settings := domain.InvoiceSettings{
		TaxPercentage: doc.decimal("taxpercentage", "taxrate", "tax", "vat"),
	}

	sc := doc.sub("servicecharge")
	if len(sc) > 0 {
		settings.ServiceCharge = domain.ServiceCharge{
			Required: sc.boolean(false, "required", "enabled", "isrequired"),
			Charge:   normalizeCharge(sc),
		}
	}

	if v, ok := doc.lookup("additionalfees", "fees", "extrafees"); ok {
		if list, ok := v.([]any); ok {
			for _, item := range list {
				m, ok := item.(map[string]any)
				if !ok {
					continue
				}
				fd := toDocument(m)
				settings.AdditionalFees = append(settings.AdditionalFees, domain.AdditionalFee{
					Name:   fd.str("name", "label", "title"),
					Charge: normalizeCharge(fd),
				})
			}
		}
	}

	return settings, nil
}

// normalizeHomeVisitPolicy приводит JSON политики выездов к domain.HomeVisitPolicy
func normalizeHomeVisitPolicy(raw []byte) (domain.HomeVisitPolicy, error) {
	doc, err := parseDocument(raw)
	if err != nil {
		return domain.HomeVisitPolicy{}, err
	}

	policy := domain.HomeVisitPolicy{
		Enabled:       doc.boolean(false, "enabled", "isenabled", "active"),
		DailyQuota:    doc.integer("dailyquota", "quota", "maxperday", "dailylimit"),
		BufferMinutes: doc.integer("bufferminutes", "travelbufferminutes", "buffer", "travelbuffer"),
	}
	if policy.DailyQuota < 0 {
		policy.DailyQuota = 0
	}
	if policy.BufferMinutes < 0 {
		policy.BufferMinutes = 0
	}

	base := doc.sub("baselocation", "base", "origin")
	if len(base) == 0 {
		base = doc
	}
	policy.BaseLocation = domain.Location{
		Address:   base.str("address", "baseaddress"),
		Latitude:  base.float("latitude", "lat"),
		Longitude: base.float("longitude", "lng", "lon"),
	}

	return policy, nil
}
