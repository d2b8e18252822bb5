package layout

import (
	"reflect"
	"testing"

	"github.com/matzehuels/lineageview/pkg/model"
)

func TestFindCycles(t *testing.T) {
	tests := []struct {
		name  string
		ids   []string
		edges []model.Edge
		want  [][]string
	}{
		{
			name:  "acyclic",
			ids:   []string{"a", "b", "c"},
			edges: []model.Edge{model.TableEdge("a", "b"), model.TableEdge("b", "c")},
		},
		{
			name:  "two cycle",
			ids:   []string{"a", "b", "c"},
			edges: []model.Edge{model.TableEdge("b", "a"), model.TableEdge("a", "b"), model.TableEdge("b", "c")},
			want:  [][]string{{"a", "b"}},
		},
		{
			name: "two separate cycles",
			ids:  []string{"a", "b", "c", "d", "e"},
			edges: []model.Edge{
				model.TableEdge("d", "e"), model.TableEdge("e", "d"),
				model.TableEdge("a", "b"), model.TableEdge("b", "c"), model.TableEdge("c", "a"),
			},
			want: [][]string{{"a", "b", "c"}, {"d", "e"}},
		},
		{
			name:  "self loop and missing table ignored",
			ids:   []string{"a"},
			edges: []model.Edge{model.TableEdge("a", "a"), model.TableEdge("a", "ghost")},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FindCycles(tables(tt.ids...), tt.edges)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("FindCycles() = %v, want %v", got, tt.want)
			}
			if IsAcyclic(tables(tt.ids...), tt.edges) != (len(tt.want) == 0) {
				t.Errorf("IsAcyclic() mismatch")
			}
		})
	}
}
