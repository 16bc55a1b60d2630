// Package i18n holds localized weekday labels. Labels are applied only when
// rendering; stored day keys are always canonical English weekday names or
// ISO dates.
package i18n

import (
	"time"

	"golang.org/x/text/language"
)

// Labels are the weekday names for one language, indexed by time.Weekday.
type Labels struct {
	Tag   language.Tag
	Long  [7]string
	Short [7]string
}

func (l Labels) Day(d time.Weekday) string {
	return l.Long[int(d)%7]
}

func (l Labels) ShortDay(d time.Weekday) string {
	return l.Short[int(d)%7]
}

type entry struct {
	code   string
	tag    language.Tag
	labels Labels
}

// English comes first so it is the matcher's fallback.
var entries = []entry{
	{"en", language.English, Labels{
		Long:  [7]string{"Sunday", "Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday"},
		Short: [7]string{"Sun", "Mon", "Tue", "Wed", "Thu", "Fri", "Sat"},
	}},
	{"ar", language.Arabic, Labels{
		Long:  [7]string{"الأحد", "الاثنين", "الثلاثاء", "الأربعاء", "الخميس", "الجمعة", "السبت"},
		Short: [7]string{"أحد", "اثنين", "ثلاثاء", "أربعاء", "خميس", "جمعة", "سبت"},
	}},
	{"de", language.German, Labels{
		Long:  [7]string{"Sonntag", "Montag", "Dienstag", "Mittwoch", "Donnerstag", "Freitag", "Samstag"},
		Short: [7]string{"So", "Mo", "Di", "Mi", "Do", "Fr", "Sa"},
	}},
	{"es", language.Spanish, Labels{
		Long:  [7]string{"domingo", "lunes", "martes", "miércoles", "jueves", "viernes", "sábado"},
		Short: [7]string{"dom", "lun", "mar", "mié", "jue", "vie", "sáb"},
	}},
	{"fr", language.French, Labels{
		Long:  [7]string{"dimanche", "lundi", "mardi", "mercredi", "jeudi", "vendredi", "samedi"},
		Short: [7]string{"dim", "lun", "mar", "mer", "jeu", "ven", "sam"},
	}},
	{"hi", language.Hindi, Labels{
		Long:  [7]string{"रविवार", "सोमवार", "मंगलवार", "बुधवार", "गुरुवार", "शुक्रवार", "शनिवार"},
		Short: [7]string{"रवि", "सोम", "मंगल", "बुध", "गुरु", "शुक्र", "शनि"},
	}},
	{"it", language.Italian, Labels{
		Long:  [7]string{"domenica", "lunedì", "martedì", "mercoledì", "giovedì", "venerdì", "sabato"},
		Short: [7]string{"dom", "lun", "mar", "mer", "gio", "ven", "sab"},
	}},
	{"nl", language.Dutch, Labels{
		Long:  [7]string{"zondag", "maandag", "dinsdag", "woensdag", "donderdag", "vrijdag", "zaterdag"},
		Short: [7]string{"zo", "ma", "di", "wo", "do", "vr", "za"},
	}},
	{"pt", language.Portuguese, Labels{
		Long:  [7]string{"domingo", "segunda-feira", "terça-feira", "quarta-feira", "quinta-feira", "sexta-feira", "sábado"},
		Short: [7]string{"dom", "seg", "ter", "qua", "qui", "sex", "sáb"},
	}},
	{"zh", language.SimplifiedChinese, Labels{
		Long:  [7]string{"星期日", "星期一", "星期二", "星期三", "星期四", "星期五", "星期六"},
		Short: [7]string{"周日", "周一", "周二", "周三", "周四", "周五", "周六"},
	}},
	{"zh-TW", language.TraditionalChinese, Labels{
		Long:  [7]string{"星期日", "星期一", "星期二", "星期三", "星期四", "星期五", "星期六"},
		Short: [7]string{"週日", "週一", "週二", "週三", "週四", "週五", "週六"},
	}},
}

var matcher = func() language.Matcher {
	tags := make([]language.Tag, len(entries))
	for i, e := range entries {
		tags[i] = e.tag
	}
	return language.NewMatcher(tags)
}()

// For returns the labels best matching lang, a BCP 47 tag or an
// Accept-Language style list. Unknown or empty input yields English.
func For(lang string) Labels {
	idx := 0
	if tags, _, err := language.ParseAcceptLanguage(lang); err == nil && len(tags) > 0 {
		if _, i, conf := matcher.Match(tags...); conf != language.No && i < len(entries) {
			idx = i
		}
	}
	l := entries[idx].labels
	l.Tag = entries[idx].tag
	return l
}

// Supported lists the language codes with label tables.
func Supported() []string {
	codes := make([]string, len(entries))
	for i, e := range entries {
		codes[i] = e.code
	}
	return codes
}
