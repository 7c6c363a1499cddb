package service

import "strings"

// provinceAliasGroups maps nicknames, Thai names and districts to the
// province names used by the upstream sources
var provinceAliasGroups = []struct {
	province string
	aliases  []string
}{
	{"Bangkok", []string{"กทม", "บางกอก", "กรุงเทพ", "กรุงเทพมหานคร", "bkk"}},
	{"Nakhon Ratchasima", []string{"โคราช", "korat", "นครราชสีมา", "พิมาย", "ปากช่อง"}},
	{"Chon Buri", []string{"พัทยา", "pattaya", "ชลบุรี", "chonburi"}},
	{"Changwat Ubon Ratchathani", []string{"อุบล", "อุบลราชธานี", "ubon ratchathani"}},
	{"Changwat Bueng Kan", []string{"บึงกาฬ", "bueng kan"}},
	{"Chiang Mai", []string{"เชียงใหม่"}},
	{"Phuket", []string{"ภูเก็ต"}},
	{"Krabi", []string{"กระบี่"}},
	{"Surat Thani", []string{"สุราษฎร์ธานี", "เกาะสมุย", "ko samui"}},
	{"Khon Kaen", []string{"ขอนแก่น"}},
	{"Trat", []string{"ตราด", "เกาะช้าง", "ko chang"}},
	{"Prachuap Khiri Khan", []string{"ประจวบคีรีขันธ์", "หัวหิน", "hua hin"}},
	{"Phra Nakhon Si Ayutthaya", []string{"พระนครศรีอยุธยา", "อยุธยา", "ayutthaya"}},
}

var provinceAliases = func() map[string]string {
	m := make(map[string]string)
	for _, g := range provinceAliasGroups {
		for _, alias := range g.aliases {
			m[strings.ToLower(alias)] = g.province
		}
	}
	return m
}()

// NormalizeProvince resolves a user-supplied province name. URL slugs use
// dashes for spaces. Unknown names are returned trimmed.
func NormalizeProvince(name string) string {
	name = strings.TrimSpace(strings.ReplaceAll(name, "-", " "))
	if canonical, ok := provinceAliases[strings.ToLower(name)]; ok {
		return canonical
	}
	return name
}
