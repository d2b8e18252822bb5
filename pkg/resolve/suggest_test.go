package resolve

import (
	"reflect"
	"testing"
)

func TestSuggest(t *testing.T) {
	u := buildUniverse(t, []tableSpec{
		{id: "customer_orders", cols: []string{"id"}},
		{id: "orders", cols: []string{"order_id", "amount"}},
		{id: "payments", cols: []string{"orders"}},
	})

	got := Suggest(u, "Orders", 0)
	var texts []string
	var kinds []SuggestionKind
	for _, s := range got {
		texts = append(texts, s.Text())
		kinds = append(kinds, s.Kind)
	}

	wantTexts := []string{"orders", "orders", "customer_orders"}
	wantKinds := []SuggestionKind{SuggestTable, SuggestColumn, SuggestTable}
	if !reflect.DeepEqual(texts, wantTexts) || !reflect.DeepEqual(kinds, wantKinds) {
		t.Errorf("Suggest() = %v %v, want %v %v", texts, kinds, wantTexts, wantKinds)
	}
	if got[1].ColumnID != col("payments", "orders") || got[1].TableLabel != "payments" {
		t.Errorf("column suggestion = %+v", got[1])
	}

	if got := Suggest(u, "order", 1); len(got) != 1 {
		t.Errorf("limit not applied: %d", len(got))
	}
	if got := Suggest(u, "  ", 5); got != nil {
		t.Errorf("blank query = %v, want nil", got)
	}
}
