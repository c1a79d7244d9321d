package transform

import (
	"regexp"
	"strings"
)

// thaiProvinces is the known administrative region lookup list used for
// address decomposition.
var thaiProvinces = []string{
	"กรุงเทพมหานคร", "กระบี่", "กาญจนบุรี", "กาฬสินธุ์", "กำแพงเพชร", "ขอนแก่น",
	"จันทบุรี", "ฉะเชิงเทรา", "ชลบุรี", "ชัยนาท", "ชัยภูมิ", "ชุมพร", "เชียงราย",
	"เชียงใหม่", "ตรัง", "ตราด", "ตาก", "นครนายก", "นครปฐม", "นครพนม", "นครราชสีมา",
	"นครศรีธรรมราช", "นครสวรรค์", "นนทบุรี", "นราธิวาส", "น่าน", "บึงกาฬ", "บุรีรัมย์",
	"ปทุมธานี", "ประจวบคีรีขันธ์", "ปราจีนบุรี", "ปัตตานี", "พระนครศรีอยุธยา", "พังงา",
	"พัทลุง", "พิจิตร", "พิษณุโลก", "เพชรบุรี", "เพชรบูรณ์", "แพร่", "ภูเก็ต", "มหาสารคาม",
	"มุกดาหาร", "แม่ฮ่องสอน", "ยโสธร", "ยะลา", "ร้อยเอ็ด", "ระนอง", "ระยอง", "ราชบุรี",
	"ลพบุรี", "ลำปาง", "ลำพูน", "เลย", "ศรีสะเกษ", "สกลนคร", "สงขลา", "สตูล", "สมุทรปราการ",
	"สมุทรสงคราม", "สมุทรสาคร", "สระแก้ว", "สระบุรี", "สิงห์บุรี", "สุโขทัย", "สุพรรณบุรี",
	"สุราษฎร์ธานี", "สุรินทร์", "หนองคาย", "หนองบัวลำภู", "อ่างทอง", "อำนาจเจริญ",
	"อุดรธานี", "อุตรดิตถ์", "อุทัยธานี", "อุบลราชธานี",
}

var (
	provincePatterns = []*regexp.Regexp{
		regexp.MustCompile(`จ\.\s*([ก-๙]+)`),
		regexp.MustCompile(`จังหวัด\s*([ก-๙]+)`),
		regexp.MustCompile(`(?i)Province\s*:?\s*([A-Za-z ]+)`),
	}
	districtPatterns = []*regexp.Regexp{
		regexp.MustCompile(`อำเภอ\s*([ก-๙]+)`),
		regexp.MustCompile(`เขต\s*([ก-๙]+)`),
		regexp.MustCompile(`อ\.\s*([ก-๙]+)`),
	}
)

// ParseAddress extracts province and district from a free-text Thai address
// using the known-province list plus light pattern matching. Either value is
// nil when no match is found.
func ParseAddress(address string) (province, district *string) {
	address = strings.TrimSpace(address)
	if address == "" {
		return nil, nil
	}

	for _, prov := range thaiProvinces {
		if strings.Contains(address, prov) {
			p := prov
			province = &p
			break
		}
	}

	if province == nil {
		for _, pattern := range provincePatterns {
			if match := pattern.FindStringSubmatch(address); match != nil {
				p := strings.TrimSpace(match[1])
				province = &p
				break
			}
		}
	}

	for _, pattern := range districtPatterns {
		if match := pattern.FindStringSubmatch(address); match != nil {
			d := strings.TrimSpace(match[1])
			district = &d
			break
		}
	}

	return province, district
}

// CategoryOther is assigned when no keyword matches.
const CategoryOther = "อื่นๆ"

// locationCategories maps each known category to its weighted keyword list.
var locationCategories = map[string][]string{
	"วัด":        {"วัด", "temple", "monastery", "shrine", "โบสถ์"},
	"ทะเล":       {"ทะเล", "หาด", "อ่าว", "เกาะ", "sea", "beach", "bay", "island"},
	"ภูเขา":      {"ดอย", "เขา", "mountain", "hill", "peak", "ภูเขา"},
	"น้ำตก":      {"น้ำตก", "waterfall", "cascade", "falls"},
	"อุทยาน":     {"อุทยาน", "สวน", "park", "garden", "national park"},
	"พิพิธภัณฑ์": {"พิพิธภัณฑ์", "museum", "gallery", "exhibition"},
	"ตลาด":       {"ตลาด", "market", "bazaar", "shopping"},
}

// Categorize scores each known category by weighted keyword occurrence:
// title matches count double and earn a position bonus favoring keywords near
// the start; body matches count once. The highest score wins, CategoryOther
// when nothing matches.
func Categorize(title, body string) string {
	titleText := strings.ToLower(strings.TrimSpace(title))
	bodyText := strings.ToLower(strings.TrimSpace(body))

	bestCategory := CategoryOther
	bestScore := 0

	for category, keywords := range locationCategories {
		score := 0
		for _, keyword := range keywords {
			kw := strings.ToLower(keyword)

			if pos := strings.Index(titleText, kw); pos >= 0 {
				positionWeight := 5 - runeOffset(titleText, pos)/2
				if positionWeight < 1 {
					positionWeight = 1
				}
				score += len([]rune(kw)) * positionWeight * 2
			}

			if strings.Contains(bodyText, kw) {
				score += len([]rune(kw))
			}
		}

		if score > bestScore || (score == bestScore && score > 0 && category < bestCategory) {
			bestScore = score
			bestCategory = category
		}
	}

	return bestCategory
}

// runeOffset converts a byte index into a rune position so Thai text scores
// the same way single-byte text does.
func runeOffset(s string, byteIndex int) int {
	return len([]rune(s[:byteIndex]))
}
