package domain

import "github.com/google/uuid"

// defaultNamespace seeds the deterministic IDs of the bundled verses so the
// fallback collection keeps stable identities across restarts.
var defaultNamespace = uuid.MustParse("5b0d7c3e-2f1a-4c8e-9d65-7a3f4e2b1c90")

var bundledVerses = []Quotation{
	{
		PrimaryText:        "神爱世人，甚至将他的独生子赐给他们，叫一切信他的，不至灭亡，反得永生。",
		PrimaryReference:   "约翰福音 3:16",
		SecondaryText:      "For God so loved the world, that he gave his only begotten Son, that whosoever believeth in him should not perish, but have everlasting life.",
		SecondaryReference: "John 3:16",
	},
	{
		PrimaryText:        "耶和华是我的牧者，我必不致缺乏。",
		PrimaryReference:   "诗篇 23:1",
		SecondaryText:      "The LORD is my shepherd; I shall not want.",
		SecondaryReference: "Psalm 23:1",
	},
	{
		PrimaryText:        "我靠着那加给我力量的，凡事都能做。",
		PrimaryReference:   "腓立比书 4:13",
		SecondaryText:      "I can do all things through Christ which strengtheneth me.",
		SecondaryReference: "Philippians 4:13",
	},
	{
		PrimaryText:        "你要专心仰赖耶和华，不可倚靠自己的聪明。",
		PrimaryReference:   "箴言 3:5",
		SecondaryText:      "Trust in the LORD with all thine heart; and lean not unto thine own understanding.",
		SecondaryReference: "Proverbs 3:5",
	},
	{
		PrimaryText:        "但那等候耶和华的必从新得力。他们必如鹰展翅上腾；他们奔跑却不困倦，行走却不疲乏。",
		PrimaryReference:   "以赛亚书 40:31",
		SecondaryText:      "But they that wait upon the LORD shall renew their strength; they shall mount up with wings as eagles; they shall run, and not be weary; and they shall walk, and not faint.",
		SecondaryReference: "Isaiah 40:31",
	},
	{
		PrimaryText:        "我们晓得万事都互相效力，叫爱神的人得益处，就是按他旨意被召的人。",
		PrimaryReference:   "罗马书 8:28",
		SecondaryText:      "And we know that all things work together for good to them that love God, to them who are the called according to his purpose.",
		SecondaryReference: "Romans 8:28",
	},
	{
		PrimaryText:        "你当刚强壮胆！不要惧怕，也不要惊惶；因为你无论往哪里去，耶和华你的神必与你同在。",
		PrimaryReference:   "约书亚记 1:9",
		SecondaryText:      "Be strong and of a good courage; be not afraid, neither be thou dismayed: for the LORD thy God is with thee whithersoever thou goest.",
		SecondaryReference: "Joshua 1:9",
	},
}

// DefaultQuotations returns a fresh copy of the bundled verse list.
// It is used whenever nothing has been stored yet.
func DefaultQuotations() []Quotation {
	out := make([]Quotation, len(bundledVerses))

	for i, q := range bundledVerses {
		q.ID = uuid.NewSHA1(defaultNamespace, []byte(q.SecondaryReference)).String()
		out[i] = q
	}

	return out
}
