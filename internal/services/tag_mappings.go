package services

import "strings"

// TagMapping is what an admin tag implies about a product.
type TagMapping struct {
	Category     string
	BodyBenefits []string
}

type tagEntry struct {
	tag string
	TagMapping
}

const (
	categorySupplements = "Nutritional Supplements"
	categoryProtein     = "Protein, Shakes & Bars"
	categorySkinCare    = "Skin Care"
)

// tagMappings is ordered; partial matches take the first entry that fits.
var tagMappings = []tagEntry{
	{"vitamin", TagMapping{categorySupplements, []string{"Total Body Health", "Immune Health", "Foundational Health"}}},
	{"mineral", TagMapping{categorySupplements, []string{"Total Body Health", "Bone and Joint Health", "Foundational Health"}}},
	{"protein", TagMapping{categoryProtein, []string{"Muscle Health", "Healthy Energy", "Healthy Weight"}}},
	{"shake", TagMapping{categoryProtein, []string{"Muscle Health", "Healthy Energy", "Healthy Weight"}}},
	{"bar", TagMapping{categoryProtein, []string{"Muscle Health", "Healthy Energy", "Healthy Weight"}}},
	{"skincare", TagMapping{categorySkinCare, []string{"Skin Health", "Postbiotic Skincare"}}},
	{"moisturizer", TagMapping{categorySkinCare, []string{"Skin Health", "Postbiotic Skincare"}}},
	{"cleanser", TagMapping{categorySkinCare, []string{"Skin Health", "Postbiotic Skincare"}}},
	{"serum", TagMapping{categorySkinCare, []string{"Skin Health", "Postbiotic Skincare"}}},
	{"omega", TagMapping{categorySupplements, []string{"Heart Health", "Brain and Nerve Health", "Eye Health"}}},
	{"probiotic", TagMapping{categorySupplements, []string{"Digestive Health", "Immune Health"}}},
	{"antioxidant", TagMapping{categorySupplements, []string{"Total Body Health", "Immune Health", "Detox Support"}}},
	{"calcium", TagMapping{categorySupplements, []string{"Bone and Joint Health", "Foundational Health"}}},
	{"magnesium", TagMapping{categorySupplements, []string{"Bone and Joint Health", "Sleep Health", "Stress, Mood & Relaxation"}}},
	{"vitamin d", TagMapping{categorySupplements, []string{"Bone and Joint Health", "Immune Health", "Foundational Health"}}},
	{"vitamin c", TagMapping{categorySupplements, []string{"Immune Health", "Skin Health"}}},
	{"b-complex", TagMapping{categorySupplements, []string{"Healthy Energy", "Brain and Nerve Health", "Stress, Mood & Relaxation"}}},
	{"prenatal", TagMapping{categorySupplements, []string{"Prenatal Health", "Foundational Health"}}},
	{"men", TagMapping{categorySupplements, []string{"Men's Health", "Total Body Health"}}},
	{"women", TagMapping{categorySupplements, []string{"Women's Health", "Total Body Health"}}},
	{"sleep", TagMapping{categorySupplements, []string{"Sleep Health", "Stress, Mood & Relaxation"}}},
	{"stress", TagMapping{categorySupplements, []string{"Stress, Mood & Relaxation", "Sleep Health"}}},
	{"weight", TagMapping{categorySupplements, []string{"Healthy Weight", "Healthy Energy"}}},
	{"energy", TagMapping{categorySupplements, []string{"Healthy Energy", "Muscle Health"}}},
	{"heart", TagMapping{categorySupplements, []string{"Heart Health", "Total Body Health"}}},
	{"heart health", TagMapping{categorySupplements, []string{"Heart Health", "Total Body Health"}}},
	{"immune", TagMapping{categorySupplements, []string{"Immune Health", "Total Body Health"}}},
	{"immune health", TagMapping{categorySupplements, []string{"Immune Health", "Total Body Health"}}},
	{"digestive", TagMapping{categorySupplements, []string{"Digestive Health", "Immune Health"}}},
	{"digestive health", TagMapping{categorySupplements, []string{"Digestive Health", "Immune Health"}}},
	{"eye", TagMapping{categorySupplements, []string{"Eye Health", "Brain and Nerve Health"}}},
	{"eye health", TagMapping{categorySupplements, []string{"Eye Health", "Brain and Nerve Health"}}},
	{"detox", TagMapping{categorySupplements, []string{"Detox Support", "Total Body Health"}}},
	{"detox support", TagMapping{categorySupplements, []string{"Detox Support", "Total Body Health"}}},
	{"joint", TagMapping{categorySupplements, []string{"Bone and Joint Health", "Muscle Health"}}},
	{"bone", TagMapping{categorySupplements, []string{"Bone and Joint Health", "Foundational Health"}}},
	{"bone health", TagMapping{categorySupplements, []string{"Bone and Joint Health", "Foundational Health"}}},
	{"brain", TagMapping{categorySupplements, []string{"Brain and Nerve Health", "Eye Health"}}},
	{"brain health", TagMapping{categorySupplements, []string{"Brain and Nerve Health", "Eye Health"}}},
	{"teen", TagMapping{categorySupplements, []string{"Child & Teen Health", "Foundational Health"}}},
	{"child", TagMapping{categorySupplements, []string{"Child & Teen Health", "Foundational Health"}}},
	{"skin", TagMapping{categorySkinCare, []string{"Skin Health", "Postbiotic Skincare"}}},
	{"skin health", TagMapping{categorySkinCare, []string{"Skin Health", "Postbiotic Skincare"}}},
	{"muscle", TagMapping{categoryProtein, []string{"Muscle Health"}}},
	{"muscle health", TagMapping{categoryProtein, []string{"Muscle Health"}}},
}

// LookupTag resolves a single tag: an exact match first, then the first entry
// where either string contains the other.
func LookupTag(tag string) (TagMapping, bool) {
	tag = strings.ToLower(strings.TrimSpace(tag))
	if tag == "" {
		return TagMapping{}, false
	}
	for _, e := range tagMappings {
		if e.tag == tag {
			return e.TagMapping, true
		}
	}
	for _, e := range tagMappings {
		if strings.Contains(tag, e.tag) || strings.Contains(e.tag, tag) {
			return e.TagMapping, true
		}
	}
	return TagMapping{}, false
}

// SplitTags splits a comma-separated tag string and drops blanks.
func SplitTags(tags string) []string {
	var out []string
	for _, t := range strings.Split(tags, ",") {
		if t = strings.TrimSpace(t); t != "" {
			out = append(out, t)
		}
	}
	return out
}

// ResolveTags maps every tag in a comma-separated list. The first mapped
// category wins; benefits are unioned in first-seen order.
func ResolveTags(tags string) (category string, benefits []string) {
	seen := make(map[string]bool)
	for _, tag := range SplitTags(tags) {
		m, ok := LookupTag(tag)
		if !ok {
			continue
		}
		if category == "" {
			category = m.Category
		}
		for _, b := range m.BodyBenefits {
			if !seen[b] {
				seen[b] = true
				benefits = append(benefits, b)
			}
		}
	}
	return category, benefits
}
