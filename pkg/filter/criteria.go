package filter

import (
	"strconv"

	"github.com/matzehuels/grapes/pkg/model"
)

// Criterion is a single predicate of a [Pipeline]. Entity kinds a criterion
// does not constrain always pass, and contribute no query parameters.
type Criterion interface {
	Kind() Kind
	// Param is the query-parameter value the criterion was built from.
	Param() string

	Artifact(a *model.Artifact) bool
	Module(m *model.Module) bool
	License(l *model.License) bool

	// ArtifactParams and ModuleParams project the criterion onto stored
	// document fields, for stores that filter before loading.
	ArtifactParams() map[string]any
	ModuleParams() map[string]any
}

// passThrough supplies the accept-everything defaults.
type passThrough struct{}

func (passThrough) Artifact(*model.Artifact) bool  { return true }
func (passThrough) Module(*model.Module) bool      { return true }
func (passThrough) License(*model.License) bool    { return true }
func (passThrough) ArtifactParams() map[string]any { return nil }
func (passThrough) ModuleParams() map[string]any   { return nil }

// Approved keeps licenses explicitly approved (or explicitly rejected when
// Value is false). Licenses still to be validated match neither.
type Approved struct {
	passThrough
	Value bool
}

func (Approved) Kind() Kind      { return KindApproved }
func (c Approved) Param() string { return strconv.FormatBool(c.Value) }
func (c Approved) License(l *model.License) bool {
	return l.Approved != nil && *l.Approved == c.Value
}

// Promoted keeps artifacts and modules by promotion status.
type Promoted struct {
	passThrough
	Value bool
}

func (Promoted) Kind() Kind      { return KindPromoted }
func (c Promoted) Param() string { return strconv.FormatBool(c.Value) }
func (c Promoted) Artifact(a *model.Artifact) bool {
	return a.Promoted == c.Value
}
func (c Promoted) Module(m *model.Module) bool {
	return m.Promoted == c.Value
}
func (c Promoted) ArtifactParams() map[string]any { return map[string]any{"promoted": c.Value} }
func (c Promoted) ModuleParams() map[string]any   { return map[string]any{"promoted": c.Value} }

// DoNotUse keeps artifacts by their do-not-use flag.
type DoNotUse struct {
	passThrough
	Value bool
}

func (DoNotUse) Kind() Kind      { return KindDoNotUse }
func (c DoNotUse) Param() string { return strconv.FormatBool(c.Value) }
func (c DoNotUse) Artifact(a *model.Artifact) bool {
	return a.DoNotUse == c.Value
}
func (c DoNotUse) ArtifactParams() map[string]any { return map[string]any{"doNotUse": c.Value} }

// Gavc keeps artifacts matching a gavc pattern; "*" or empty parts match
// anything.
type Gavc struct {
	passThrough
	Value string
}

func (Gavc) Kind() Kind      { return KindGavc }
func (c Gavc) Param() string { return c.Value }
func (c Gavc) Artifact(a *model.Artifact) bool {
	return model.ParseGavc(c.Value).Match(a)
}
func (c Gavc) ArtifactParams() map[string]any {
	g := model.ParseGavc(c.Value)
	params := make(map[string]any)
	for field, v := range map[string]string{
		"groupId":    g.GroupID,
		"artifactId": g.ArtifactID,
		"version":    g.Version,
		"classifier": g.Classifier,
		"extension":  g.Extension,
	} {
		if v != "" && v != model.Wildcard {
			params[field] = v
		}
	}
	return params
}

// HasLicense keeps artifacts that do (or do not) reference any license.
type HasLicense struct {
	passThrough
	Value bool
}

func (HasLicense) Kind() Kind      { return KindHasLicense }
func (c HasLicense) Param() string { return strconv.FormatBool(c.Value) }
func (c HasLicense) Artifact(a *model.Artifact) bool {
	return (len(a.Licenses) > 0) == c.Value
}

// ToBeValidated keeps licenses by whether they still await approval.
type ToBeValidated struct {
	passThrough
	Value bool
}

func (ToBeValidated) Kind() Kind      { return KindToBeValidated }
func (c ToBeValidated) Param() string { return strconv.FormatBool(c.Value) }
func (c ToBeValidated) License(l *model.License) bool {
	return l.ToBeValidated() == c.Value
}

// LicenseID keeps the named license and the artifacts referencing it.
type LicenseID struct {
	passThrough
	Value string
}

func (LicenseID) Kind() Kind      { return KindLicenseID }
func (c LicenseID) Param() string { return c.Value }
func (c LicenseID) Artifact(a *model.Artifact) bool {
	return a.HasLicense(c.Value)
}
func (c LicenseID) License(l *model.License) bool {
	return l.Name == c.Value
}
func (c LicenseID) ArtifactParams() map[string]any { return map[string]any{"licenses": c.Value} }

// Classifier keeps artifacts with the given classifier.
type Classifier struct {
	passThrough
	Value string
}

func (Classifier) Kind() Kind      { return KindClassifier }
func (c Classifier) Param() string { return c.Value }
func (c Classifier) Artifact(a *model.Artifact) bool {
	return a.Classifier == c.Value
}
func (c Classifier) ArtifactParams() map[string]any { return map[string]any{"classifier": c.Value} }

// Extension keeps artifacts with the given extension.
type Extension struct {
	passThrough
	Value string
}

func (Extension) Kind() Kind      { return KindExtension }
func (c Extension) Param() string { return c.Value }
func (c Extension) Artifact(a *model.Artifact) bool {
	return a.Extension == c.Value
}
func (c Extension) ArtifactParams() map[string]any { return map[string]any{"extension": c.Value} }

// Type keeps artifacts of the given type.
type Type struct {
	passThrough
	Value string
}

func (Type) Kind() Kind      { return KindType }
func (c Type) Param() string { return c.Value }
func (c Type) Artifact(a *model.Artifact) bool {
	return a.Type == c.Value
}
func (c Type) ArtifactParams() map[string]any { return map[string]any{"type": c.Value} }

// Version keeps artifacts and modules with the given version.
type Version struct {
	passThrough
	Value string
}

func (Version) Kind() Kind      { return KindVersion }
func (c Version) Param() string { return c.Value }
func (c Version) Artifact(a *model.Artifact) bool {
	return a.Version == c.Value
}
func (c Version) Module(m *model.Module) bool {
	return m.Version == c.Value
}
func (c Version) ArtifactParams() map[string]any { return map[string]any{"version": c.Value} }
func (c Version) ModuleParams() map[string]any   { return map[string]any{"version": c.Value} }

// ArtifactID keeps artifacts with the given artifact-id.
type ArtifactID struct {
	passThrough
	Value string
}

func (ArtifactID) Kind() Kind      { return KindArtifactID }
func (c ArtifactID) Param() string { return c.Value }
func (c ArtifactID) Artifact(a *model.Artifact) bool {
	return a.ArtifactID == c.Value
}
func (c ArtifactID) ArtifactParams() map[string]any { return map[string]any{"artifactId": c.Value} }

// GroupID keeps artifacts with the given group-id.
type GroupID struct {
	passThrough
	Value string
}

func (GroupID) Kind() Kind      { return KindGroupID }
func (c GroupID) Param() string { return c.Value }
func (c GroupID) Artifact(a *model.Artifact) bool {
	return a.GroupID == c.Value
}
func (c GroupID) ArtifactParams() map[string]any { return map[string]any{"groupId": c.Value} }

// ModuleName keeps modules with the given name.
type ModuleName struct {
	passThrough
	Value string
}

func (ModuleName) Kind() Kind      { return KindModuleName }
func (c ModuleName) Param() string { return c.Value }
func (c ModuleName) Module(m *model.Module) bool {
	return m.Name == c.Value
}
func (c ModuleName) ModuleParams() map[string]any { return map[string]any{"name": c.Value} }

// Organization keeps modules attached to the named organization.
type Organization struct {
	passThrough
	Value string
}

func (Organization) Kind() Kind      { return KindOrganization }
func (c Organization) Param() string { return c.Value }
func (c Organization) Module(m *model.Module) bool {
	return m.Organization == c.Value
}
func (c Organization) ModuleParams() map[string]any { return map[string]any{"organization": c.Value} }

// newCriterion builds the criterion for kind from a raw parameter value.
// Boolean kinds treat anything strconv.ParseBool rejects as false.
func newCriterion(k Kind, raw string) Criterion {
	b := parseBool(raw)
	switch k {
	case KindApproved:
		return Approved{Value: b}
	case KindPromoted:
		return Promoted{Value: b}
	case KindDoNotUse:
		return DoNotUse{Value: b}
	case KindGavc:
		return Gavc{Value: raw}
	case KindHasLicense:
		return HasLicense{Value: b}
	case KindToBeValidated:
		return ToBeValidated{Value: b}
	case KindLicenseID:
		return LicenseID{Value: raw}
	case KindClassifier:
		return Classifier{Value: raw}
	case KindExtension:
		return Extension{Value: raw}
	case KindType:
		return Type{Value: raw}
	case KindVersion:
		return Version{Value: raw}
	case KindArtifactID:
		return ArtifactID{Value: raw}
	case KindGroupID:
		return GroupID{Value: raw}
	case KindModuleName:
		return ModuleName{Value: raw}
	case KindOrganization:
		return Organization{Value: raw}
	}
	return nil
}
