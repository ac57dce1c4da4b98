package intent

import (
	"strings"

	"github.com/agenthands/twohop/internal/core/model"
)

// Keywords maps each category to the request phrases that imply it.
// Korean terms come first since most traffic is Korean.
var Keywords = map[model.Category][]string{
	model.CategoryRepair: {
		"수리", "고장", "전기", "배관", "누수", "변기", "보일러", "수도", "콘센트", "형광등",
		"repair", "fix", "broken", "plumb", "leak", "electric",
	},
	model.CategoryCleaning: {
		"청소", "세탁", "정리정돈", "곰팡이", "에어컨 세척",
		"clean", "laundry", "tidy", "mold",
	},
	model.CategoryPestControl: {
		"방역", "해충", "벌레", "바퀴", "쥐", "소독", "개미", "모기",
		"pest", "cockroach", "insect", "rodent", "termite",
	},
	model.CategoryTechService: {
		"컴퓨터", "노트북", "인터넷", "와이파이", "프린터", "스마트폰", "핸드폰", "설치", "tv",
		"computer", "laptop", "wifi", "internet", "printer", "smartphone", "install",
	},
	model.CategoryLifeHelper: {
		"심부름", "장보기", "이사", "배달", "운반", "조립", "대신",
		"errand", "grocery", "moving", "delivery", "assemble",
	},
	model.CategorySeniorSupport: {
		"어르신", "노인", "할머니", "할아버지", "부모님", "돌봄", "병원 동행", "간병",
		"elderly", "senior", "caregiver", "grandparent",
	},
}

// MatchKeywords scans the taxonomy in declaration order and returns the
// first category with any keyword contained in text, or def when none does.
// It is a pure function of its inputs.
func MatchKeywords(text string, taxonomy []model.Category, keywords map[model.Category][]string, def model.Category) model.Category {
	lowered := strings.ToLower(text)
	for _, c := range taxonomy {
		for _, kw := range keywords[c] {
			if strings.Contains(lowered, kw) {
				return c
			}
		}
	}
	return def
}
