package graph_test

import (
	"fmt"

	"github.com/matzehuels/lineageview/pkg/graph"
	"github.com/matzehuels/lineageview/pkg/model"
)

func ExampleMarshal() {
	b := model.NewBuilder()
	_ = b.AddTable(model.Table{ID: "a", Columns: []model.Column{{Name: "x"}}})
	_ = b.AddTable(model.Table{ID: "b"})
	b.AddEdge(model.TableEdge("a", "b"))
	u, _ := b.Build()

	data, _ := graph.Marshal(u, graph.Meta{Project: "demo"})
	fmt.Print(string(data))
	// Output:
	// {
	//   "version": 1,
	//   "project": "demo",
	//   "tables": [
	//     {
	//       "id": "a",
	//       "label": "a",
	//       "kind": "model",
	//       "columns": [
	//         {
	//           "name": "x"
	//         }
	//       ]
	//     },
	//     {
	//       "id": "b",
	//       "label": "b",
	//       "kind": "model"
	//     }
	//   ],
	//   "edges": [
	//     {
	//       "kind": "table",
	//       "source": "a",
	//       "target": "b"
	//     }
	//   ]
	// }
}
