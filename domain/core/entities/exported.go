package entities

// ExportedData is the transfer document produced by subgraph export and consumed
// by import. Ids are the originals; remapping happens at import time.
type ExportedData struct {
	Version int        `json:"version"`
	Nodes   []TaskNode `json:"nodes"`
	Edges   []TaskEdge `json:"edges"`
}

// NodeIDs returns the set of ids of the exported nodes
func (d ExportedData) NodeIDs() map[string]struct{} {
	ids := make(map[string]struct{}, len(d.Nodes))
	for _, n := range d.Nodes {
		ids[n.ID] = struct{}{}
	}
	return ids
}
