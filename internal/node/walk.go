package node

// CollectReferences walks n and every node reachable from it (fields, map
// keys/items, array items) and registers every node carrying an @id into a
// fresh ReferenceTable. Per spec §6, the parser owns reference-table
// population; since Node's own JSON codec plays the parser's role in this
// module (package doc, decode.go), this is where that population happens.
func CollectReferences(n *Node) (*ReferenceTable, error) {
	t := NewReferenceTable()
	if err := collect(n, t); err != nil {
		return nil, err
	}
	return t, nil
}

func collect(n *Node, t *ReferenceTable) error {
	if n == nil {
		return nil
	}
	if err := t.Add(n); err != nil {
		return err
	}
	if n.Fields != nil {
		for _, name := range n.Fields.Names() {
			child, _ := n.Fields.Get(name)
			if err := collect(child, t); err != nil {
				return err
			}
		}
	}
	for _, k := range n.Keys {
		if err := collect(k, t); err != nil {
			return err
		}
	}
	for _, it := range n.Items {
		if err := collect(it, t); err != nil {
			return err
		}
	}
	return nil
}
