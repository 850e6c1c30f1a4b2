package classifier

import "gazette/internal/models"

// Merge combines the current value of a field with a candidate from another
// pass. An unknown candidate never replaces anything, an unknown current
// value is always replaced, and otherwise the candidate wins only when its
// origin ranks at least as high: content beats title, and a title value never
// overwrites a content-derived one.
func Merge[T comparable](current T, currentOrigin models.Origin, candidate T, candidateOrigin models.Origin, unknown T) (T, models.Origin) {
	if candidate == unknown {
		if current == unknown {
			return current, models.OriginNone
		}

		return current, currentOrigin
	}

	if current == unknown || candidateOrigin >= currentOrigin {
		return candidate, candidateOrigin
	}

	return current, currentOrigin
}

// MergePtr is Merge for optional values, where nil is unknown.
func MergePtr[T any](current *T, currentOrigin models.Origin, candidate *T, candidateOrigin models.Origin) (*T, models.Origin) {
	if candidate == nil {
		if current == nil {
			return nil, models.OriginNone
		}

		return current, currentOrigin
	}

	if current == nil || candidateOrigin >= currentOrigin {
		return candidate, candidateOrigin
	}

	return current, currentOrigin
}

// merger applies Merge field by field onto an announcement, tracking origins.
type merger struct {
	a *models.NormalizedAnnouncement
}

func (m merger) origin(field string) models.Origin {
	return m.a.OriginOf(field)
}

func (m merger) set(field string, o models.Origin) {
	if o == models.OriginNone {
		delete(m.a.Origins, field)

		return
	}

	m.a.Origins[field] = o
}

// apply merges every detected field of c, produced by pass o, into m.a.
func (m merger) apply(c candidate, o models.Origin) {
	a := m.a

	var origin models.Origin

	a.Type, origin = Merge(a.Type, m.origin(models.FieldType), c.Type, o, models.TypeUnknown)
	m.set(models.FieldType, origin)

	a.Category, origin = Merge(a.Category, m.origin(models.FieldCategory), c.Category, o, models.CategoryUnknown)
	m.set(models.FieldCategory, origin)

	a.AccessMode, origin = Merge(a.AccessMode, m.origin(models.FieldAccessMode), c.AccessMode, o, models.AccessUnknown)
	m.set(models.FieldAccessMode, origin)

	a.Scope.Level, origin = Merge(a.Scope.Level, m.origin(models.FieldScopeLevel), c.Scope.Level, o, models.ScopeUnknown)
	m.set(models.FieldScopeLevel, origin)

	for _, f := range []struct {
		name string
		dst  **int
		src  *int
	}{
		{models.FieldQuotaTotal, &a.Quotas.Total, c.Quotas.Total},
		{models.FieldQuotaOpen, &a.Quotas.Open, c.Quotas.Open},
		{models.FieldQuotaInternal, &a.Quotas.InternalPromotion, c.Quotas.InternalPromotion},
		{models.FieldQuotaDisability, &a.Quotas.Disability, c.Quotas.Disability},
	} {
		*f.dst, origin = MergePtr(*f.dst, m.origin(f.name), f.src, o)
		m.set(f.name, origin)
	}

	for _, f := range []struct {
		name string
		dst  **string
		src  *string
	}{
		{models.FieldRegion, &a.Scope.Region, c.Scope.Region},
		{models.FieldProvince, &a.Scope.Province, c.Scope.Province},
		{models.FieldMunicipality, &a.Scope.Municipality, c.Scope.Municipality},
		{models.FieldTrack, &a.RelatedTrack, c.Track},
	} {
		*f.dst, origin = MergePtr(*f.dst, m.origin(f.name), f.src, o)
		m.set(f.name, origin)
	}
}
