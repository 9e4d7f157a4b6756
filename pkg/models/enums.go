package models

import "slices"

type Language string

const (
	LanguageEnglish    Language = "en"
	LanguageSpanish    Language = "es"
	LanguageChinese    Language = "zh"
	LanguageArabic     Language = "ar"
	LanguageHindi      Language = "hi"
	LanguageKorean     Language = "ko"
	LanguageVietnamese Language = "vi"
	LanguageTagalog    Language = "tl"
)

// Languages lists every language claims may be submitted in, in display order
var Languages = []Language{
	LanguageEnglish,
	LanguageSpanish,
	LanguageChinese,
	LanguageArabic,
	LanguageHindi,
	LanguageKorean,
	LanguageVietnamese,
	LanguageTagalog,
}

// TranslationLanguages excludes english, which is always the source side of a translation
var TranslationLanguages = Languages[1:]

var languageNames = map[Language]string{
	LanguageEnglish:    "English",
	LanguageSpanish:    "Español",
	LanguageChinese:    "中文",
	LanguageArabic:     "العربية",
	LanguageHindi:      "हिन्दी",
	LanguageKorean:     "한국어",
	LanguageVietnamese: "Tiếng Việt",
	LanguageTagalog:    "Filipino",
}

func (l Language) IsValid() bool {
	return slices.Contains(Languages, l)
}

func (l Language) IsTranslationTarget() bool {
	return slices.Contains(TranslationLanguages, l)
}

// NativeName is the language's name written in that language
func (l Language) NativeName() string {
	return languageNames[l]
}

type Role string

const (
	RoleVoter      Role = "voter"
	RoleOrganizer  Role = "organizer"
	RoleAmbassador Role = "ambassador"
	RoleAdmin      Role = "admin"
)

var Roles = []Role{RoleVoter, RoleOrganizer, RoleAmbassador, RoleAdmin}

func (r Role) IsValid() bool {
	return slices.Contains(Roles, r)
}

type ClaimStatus string

const (
	StatusPending    ClaimStatus = "pending"
	StatusInProgress ClaimStatus = "in-progress"
	StatusVerified   ClaimStatus = "verified"
	StatusRejected   ClaimStatus = "rejected"
)

var ClaimStatuses = []ClaimStatus{StatusPending, StatusInProgress, StatusVerified, StatusRejected}

// ReviewStatuses are the statuses a reviewer may assign
var ReviewStatuses = []ClaimStatus{StatusInProgress, StatusVerified, StatusRejected}

func (s ClaimStatus) IsValid() bool {
	return slices.Contains(ClaimStatuses, s)
}

type Verdict string

const (
	VerdictTrue       Verdict = "true"
	VerdictFalse      Verdict = "false"
	VerdictMisleading Verdict = "misleading"
	VerdictUnverified Verdict = "unverified"
)

var Verdicts = []Verdict{VerdictTrue, VerdictFalse, VerdictMisleading, VerdictUnverified}

func (v Verdict) IsValid() bool {
	return slices.Contains(Verdicts, v)
}

type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
	PriorityUrgent Priority = "urgent"
)

var Priorities = []Priority{PriorityLow, PriorityMedium, PriorityHigh, PriorityUrgent}

func (p Priority) IsValid() bool {
	return slices.Contains(Priorities, p)
}

type SourceType string

const (
	SourceGovernment SourceType = "government"
	SourceNews       SourceType = "news"
	SourceAcademic   SourceType = "academic"
	SourceNGO        SourceType = "ngo"
	SourceOther      SourceType = "other"
)

var SourceTypes = []SourceType{SourceGovernment, SourceNews, SourceAcademic, SourceNGO, SourceOther}

func (t SourceType) IsValid() bool {
	return slices.Contains(SourceTypes, t)
}

type Category string

const (
	CategoryVoting         Category = "voting"
	CategoryRegistration   Category = "registration"
	CategoryIdentification Category = "identification"
	CategoryDeadlines      Category = "deadlines"
	CategoryLocations      Category = "locations"
	CategoryGeneral        Category = "general"
)

var Categories = []Category{
	CategoryVoting,
	CategoryRegistration,
	CategoryIdentification,
	CategoryDeadlines,
	CategoryLocations,
	CategoryGeneral,
}

func (c Category) IsValid() bool {
	return slices.Contains(Categories, c)
}

type Difficulty string

const (
	DifficultyBeginner     Difficulty = "beginner"
	DifficultyIntermediate Difficulty = "intermediate"
	DifficultyAdvanced     Difficulty = "advanced"
)

var Difficulties = []Difficulty{DifficultyBeginner, DifficultyIntermediate, DifficultyAdvanced}

func (d Difficulty) IsValid() bool {
	return slices.Contains(Difficulties, d)
}
