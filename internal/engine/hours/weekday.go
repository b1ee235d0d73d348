package hours

import (
	"strings"
	"time"

	"github.com/goodsign/monday"
)

// DaysPerWeek is the number of weekday buckets, Sunday=0 .. Saturday=6.
const DaysPerWeek = 7

// referenceSunday anchors day indices to calendar dates for name lookup.
var referenceSunday = time.Date(2023, time.January, 1, 12, 0, 0, 0, time.UTC)

var locales = map[string]monday.Locale{
	"de": monday.LocaleDeDE,
	"en": monday.LocaleEnUS,
	"fr": monday.LocaleFrFR,
	"es": monday.LocaleEsES,
	"it": monday.LocaleItIT,
	"nl": monday.LocaleNlNL,
	"pt": monday.LocalePtPT,
	"pl": monday.LocalePlPL,
	"ru": monday.LocaleRuRU,
}

// LocaleFor maps a Places language code ("de", "en-GB", ...) to a monday
// locale. Unknown languages fall back to German.
func LocaleFor(lang string) monday.Locale {
	lang = strings.ToLower(strings.TrimSpace(lang))
	if i := strings.IndexAny(lang, "-_"); i > 0 {
		lang = lang[:i]
	}
	if l, ok := locales[lang]; ok {
		return l
	}
	return monday.LocaleDeDE
}

// WeekdayName returns the localized full weekday name for a day index.
// Indices outside 0..6 wrap around the week.
func WeekdayName(day int, locale monday.Locale) string {
	day = ((day % DaysPerWeek) + DaysPerWeek) % DaysPerWeek
	return monday.Format(referenceSunday.AddDate(0, 0, day), "Monday", locale)
}

// InvalidTime is what a malformed "HHMM" value formats to.
const InvalidTime = "Invalid date"

// FormatTime turns a 4-digit 24-hour "HHMM" string into "HH:MM".
func FormatTime(hhmm string) string {
	if len(hhmm) != 4 {
		return InvalidTime
	}
	t, err := time.Parse("1504", hhmm)
	if err != nil {
		return InvalidTime
	}
	return t.Format("15:04")
}

// DayIndex finds the day index of a localized weekday name in any known
// locale. Matching ignores case.
func DayIndex(name string) (int, bool) {
	name = strings.TrimSpace(name)
	for _, l := range locales {
		for d := 0; d < DaysPerWeek; d++ {
			if strings.EqualFold(WeekdayName(d, l), name) {
				return d, true
			}
		}
	}
	return 0, false
}
