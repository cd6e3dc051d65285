package normalizer

import (
	"regexp"
	"sort"
	"strconv"
	"strings"

	qerrors "github.com/SAP-F-2025/quiz-player/internal/errors"
	"github.com/SAP-F-2025/quiz-player/internal/models"
	"github.com/SAP-F-2025/quiz-player/internal/utils"
)

var (
	zoneMarker        = regexp.MustCompile(`\[\[(\d+)\]\]`)
	genericGroupLabel = regexp.MustCompile(`(?i)^group\s*\d+$`)
)

const (
	labelMaxWords    = 12
	labelMaxChars    = 100
	labelSnipWords   = 8
	defaultItemGroup = "1"
)

var dragItemExtractors = []Extractor[[]models.RawDragItem]{
	func(r *models.RawQuestion) ([]models.RawDragItem, bool) { return r.Items, len(r.Items) > 0 },
	func(r *models.RawQuestion) ([]models.RawDragItem, bool) { return r.Dragboxes, len(r.Dragboxes) > 0 },
	func(r *models.RawQuestion) ([]models.RawDragItem, bool) { return r.Dragbox, len(r.Dragbox) > 0 },
}

// ExtractZones scans the stem for [[n]] markers in order of appearance.
func ExtractZones(stem string) []models.DropZone {
	matches := zoneMarker.FindAllStringSubmatch(stem, -1)
	zones := make([]models.DropZone, 0, len(matches))
	for _, m := range matches {
		n, err := strconv.Atoi(m[1])
		if err != nil {
			continue
		}
		zones = append(zones, models.DropZone{ID: n, ExpectedGroup: strconv.Itoa(n)})
	}
	return zones
}

// IsGenericGroupLabel matches author-less labels like "Group 2".
func IsGenericGroupLabel(label string) bool {
	return genericGroupLabel.MatchString(utils.CleanText(label))
}

func normalizeDragIntoText(raw *models.RawQuestion, q *models.Question) error {
	zones := ExtractZones(raw.Text)
	rawItems, _ := firstMatch(raw, dragItemExtractors)
	if len(zones) == 0 || len(rawItems) == 0 {
		return qerrors.NoContent("no drag items or targets found")
	}

	groups := make([]string, len(rawItems))
	for i, it := range rawItems {
		g := strings.TrimSpace(it.Group.String())
		if g == "" {
			g = defaultItemGroup
		}
		groups[i] = g
	}
	repairItemGroups(groups, zones)

	stemPlain := strings.ToLower(utils.CollapseSpaces(utils.StripHTML(raw.Text)))
	items := make([]models.DragItem, len(rawItems))
	for i, it := range rawItems {
		items[i] = models.DragItem{
			Label:    itemLabel(it, i, stemPlain),
			Group:    groups[i],
			Reusable: it.Infinite.Truthy(),
		}
	}

	groupMode := false
	for _, it := range items {
		if it.Reusable {
			groupMode = true
			break
		}
	}
	authored := make(map[string]string, len(raw.Groups))
	for id, label := range raw.Groups {
		if clean := utils.CleanText(label); clean != "" && !IsGenericGroupLabel(clean) {
			authored[strings.TrimSpace(id)] = clean
			groupMode = true
		}
	}

	q.DropZones = zones
	q.DraggableItems = items
	q.GroupMode = groupMode
	q.GroupLabels = groupLabels(zones, items, authored)

	itemGroups := make(map[string]bool, len(items))
	for _, it := range items {
		itemGroups[it.Group] = true
	}
	for _, z := range zones {
		if !itemGroups[z.ExpectedGroup] {
			return qerrors.NoContent("drop zone [[%d]] has no draggable item of group %s", z.ID, z.ExpectedGroup)
		}
	}
	return nil
}

// repairItemGroups handles authoring data where every item landed in the
// same group: items are spread cyclically over 1..max(zone id). Zone ids
// must form the plain sequence 1..max, otherwise the groups are kept.
func repairItemGroups(groups []string, zones []models.DropZone) {
	distinct := map[string]bool{}
	for _, g := range groups {
		distinct[g] = true
	}
	if len(distinct) != 1 || len(zones) == 0 {
		return
	}
	ids := map[int]bool{}
	maxGroup := 0
	for _, z := range zones {
		if z.ID < 1 {
			return
		}
		ids[z.ID] = true
		if z.ID > maxGroup {
			maxGroup = z.ID
		}
	}
	if len(ids) != maxGroup {
		return
	}
	for i := range groups {
		groups[i] = strconv.Itoa(i%maxGroup + 1)
	}
}

// itemLabel prefers an explicit label field. Text that already appears in
// the stem or runs too long is cut to its first words.
func itemLabel(it models.RawDragItem, i int, stemPlain string) string {
	var text string
	for _, f := range []models.Scalar{it.Label, it.ShortLabel, it.Name, it.Title, it.Text, it.Value} {
		if s := strings.TrimSpace(f.String()); f.IsString() && s != "" {
			text = utils.CleanText(s)
			break
		}
	}
	if text == "" {
		return "Option " + strconv.Itoa(i+1)
	}

	words := strings.Fields(text)
	appears := strings.Contains(stemPlain, strings.ToLower(utils.CollapseSpaces(text)))
	tooLong := len(words) > labelMaxWords || len([]rune(text)) > labelMaxChars
	if !appears && !tooLong {
		return text
	}
	if len(words) > labelSnipWords {
		return strings.Join(words[:labelSnipWords], " ") + "…"
	}
	return strings.Join(words, " ")
}

// groupLabels labels every group seen in zones or items: the author label
// when meaningful, else the shortest item label of the group.
func groupLabels(zones []models.DropZone, items []models.DragItem, authored map[string]string) map[string]string {
	ids := map[string]bool{}
	for _, z := range zones {
		ids[z.ExpectedGroup] = true
	}
	for _, it := range items {
		ids[it.Group] = true
	}

	labels := make(map[string]string, len(ids))
	for id := range ids {
		if l, ok := authored[id]; ok {
			labels[id] = l
			continue
		}
		var candidates []string
		for _, it := range items {
			if it.Group == id {
				candidates = append(candidates, it.Label)
			}
		}
		if len(candidates) == 0 {
			labels[id] = "Option " + id
			continue
		}
		sort.SliceStable(candidates, func(a, b int) bool {
			return len([]rune(candidates[a])) < len([]rune(candidates[b]))
		})
		labels[id] = candidates[0]
	}
	return labels
}
