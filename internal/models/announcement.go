package models

import "time"

// AnnouncementType is the kind of competition announcement.
type AnnouncementType string

// Announcement types.
const (
	TypeUnknown        AnnouncementType = "unknown"
	TypeNewCall        AnnouncementType = "new-call"
	TypeAdmittedList   AnnouncementType = "admitted-list"
	TypeBoardAppointed AnnouncementType = "board-appointment"
	TypeResults        AnnouncementType = "results"
	TypeCorrection     AnnouncementType = "correction"
	TypeOther          AnnouncementType = "other"
)

// Category is the pay-grade category of the advertised positions.
type Category string

// Categories.
const (
	CategoryUnknown  Category = "unknown"
	CategoryA1       Category = "A1"
	CategoryA2       Category = "A2"
	CategoryB        Category = "B"
	CategoryC1       Category = "C1"
	CategoryC2       Category = "C2"
	CategoryE        Category = "E"
	CategoryLabor    Category = "labor"
	CategoryMultiple Category = "multiple"
)

// AccessMode is how candidates may access the positions.
type AccessMode string

// Access modes.
const (
	AccessUnknown    AccessMode = "unknown"
	AccessOpen       AccessMode = "open"
	AccessInternal   AccessMode = "internal-promotion"
	AccessMixed      AccessMode = "mixed"
	AccessDisability AccessMode = "disability-reserved"
)

// ScopeLevel is the administrative level of the issuing body.
type ScopeLevel string

// Scope levels.
const (
	ScopeUnknown  ScopeLevel = "unknown"
	ScopeNational ScopeLevel = "national"
	ScopeRegional ScopeLevel = "regional"
	ScopeLocal    ScopeLevel = "local"
)

// Quotas holds advertised position counts. Nil means unknown.
type Quotas struct {
	Total             *int `json:"total,omitempty" bson:"total,omitempty"`
	Open              *int `json:"open,omitempty" bson:"open,omitempty"`
	InternalPromotion *int `json:"internalPromotion,omitempty" bson:"internal_promotion,omitempty"`
	Disability        *int `json:"disability,omitempty" bson:"disability,omitempty"`
}

// Scope is the geographic scope of an announcement.
type Scope struct {
	Region       *string    `json:"region,omitempty" bson:"region,omitempty"`
	Province     *string    `json:"province,omitempty" bson:"province,omitempty"`
	Municipality *string    `json:"municipality,omitempty" bson:"municipality,omitempty"`
	Level        ScopeLevel `json:"level" bson:"level"`
}

// Origin records which classification pass produced a field value.
type Origin int

// Origins ordered by precedence.
const (
	OriginNone Origin = iota
	OriginTitle
	OriginContent
)

func (o Origin) String() string {
	switch o {
	case OriginTitle:
		return "title"
	case OriginContent:
		return "content"
	default:
		return "none"
	}
}

// Field names used as keys of NormalizedAnnouncement.Origins.
const (
	FieldType            = "type"
	FieldCategory        = "category"
	FieldAccessMode      = "access_mode"
	FieldQuotaTotal      = "quotas.total"
	FieldQuotaOpen       = "quotas.open"
	FieldQuotaInternal   = "quotas.internal_promotion"
	FieldQuotaDisability = "quotas.disability"
	FieldScopeLevel      = "scope.level"
	FieldRegion          = "scope.region"
	FieldProvince        = "scope.province"
	FieldMunicipality    = "scope.municipality"
	FieldTrack           = "related_track"
)

// NormalizedAnnouncement is the structured record built from an index entry
// and, once available, its full document.
type NormalizedAnnouncement struct {
	UpdatedAt      time.Time         `json:"updatedAt" bson:"updated_at"`
	PublishedOn    time.Time         `json:"publishedOn" bson:"published_on"`
	Origins        map[string]Origin `json:"origins" bson:"origins"`
	RelatedTrack   *string           `json:"relatedTrack,omitempty" bson:"related_track,omitempty"`
	EntryRef       string            `json:"entryRef" bson:"entry_ref"`
	Type           AnnouncementType  `json:"type" bson:"type"`
	Category       Category          `json:"category" bson:"category"`
	AccessMode     AccessMode        `json:"accessMode" bson:"access_mode"`
	CleanTitle     string            `json:"cleanTitle" bson:"clean_title"`
	Summary        string            `json:"summary" bson:"summary"`
	Department     string            `json:"department" bson:"department"`
	HTMLURL        string            `json:"htmlUrl" bson:"html_url"`
	XMLURL         string            `json:"xmlUrl" bson:"xml_url"`
	PDFURL         string            `json:"pdfUrl" bson:"pdf_url"`
	Scope          Scope             `json:"scope" bson:"scope"`
	Quotas         Quotas            `json:"quotas" bson:"quotas"`
	RelevanceScore int               `json:"relevanceScore" bson:"relevance_score"`
}

// OriginOf returns the pass that produced field, or OriginNone.
func (a *NormalizedAnnouncement) OriginOf(field string) Origin {
	if a.Origins == nil {
		return OriginNone
	}

	return a.Origins[field]
}

// ContentResolved reports whether at least one field came from the document.
func (a *NormalizedAnnouncement) ContentResolved() bool {
	for _, o := range a.Origins {
		if o == OriginContent {
			return true
		}
	}

	return false
}
