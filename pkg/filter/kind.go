package filter

// Kind identifies a criterion. A pipeline holds at most one criterion per
// kind, and each kind maps to exactly one query-parameter key.
type Kind int

const (
	KindApproved Kind = iota
	KindPromoted
	KindDoNotUse
	KindGavc
	KindHasLicense
	KindToBeValidated
	KindLicenseID
	KindClassifier
	KindExtension
	KindType
	KindVersion
	KindArtifactID
	KindGroupID
	KindModuleName
	KindOrganization

	kindCount
)

var kindKeys = [kindCount]string{
	KindApproved:      "approved",
	KindPromoted:      "promoted",
	KindDoNotUse:      "do-not-use",
	KindGavc:          "gavc",
	KindHasLicense:    "has-license",
	KindToBeValidated: "to-be-validated",
	KindLicenseID:     "license-id",
	KindClassifier:    "classifier",
	KindExtension:     "extension",
	KindType:          "type",
	KindVersion:       "version",
	KindArtifactID:    "artifact-id",
	KindGroupID:       "group-id",
	KindModuleName:    "module-name",
	KindOrganization:  "organization",
}

// Key returns the query-parameter key of the kind.
func (k Kind) Key() string {
	if k < 0 || k >= kindCount {
		return ""
	}
	return kindKeys[k]
}

func (k Kind) String() string { return k.Key() }

// Kinds returns every kind in declaration order.
func Kinds() []Kind {
	out := make([]Kind, kindCount)
	for i := range out {
		out[i] = Kind(i)
	}
	return out
}

// KindOf returns the kind for a query-parameter key.
func KindOf(key string) (Kind, bool) {
	for k, v := range kindKeys {
		if v == key {
			return Kind(k), true
		}
	}
	return 0, false
}

// Controller parameter keys.
const (
	KeyScopeCompile   = "scope-compile"
	KeyScopeRuntime   = "scope-runtime"
	KeyScopeTest      = "scope-test"
	KeyScopeProvided  = "scope-provided"
	KeyShowThirdParty = "show-third-party"
	KeyShowCorporate  = "show-corporate"
	KeyShowLicenses   = "show-licenses"
	KeyDepth          = "depth"
)
