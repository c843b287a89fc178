package storage

import (
	"encoding/csv"
	"encoding/json"
	"io"

	"github.com/san-kum/replisim/internal/dynamo"
)

type EpochData struct {
	Epoch  int         `json:"epoch"`
	Times  []float64   `json:"times"`
	States [][]float64 `json:"states"`
}

type ExportData struct {
	Run    RunMetadata `json:"run"`
	Epochs []EpochData `json:"epochs"`
}

// LoadAll reads the metadata and every stored epoch of a run.
func (s *Store) LoadAll(runID string) (*ExportData, error) {
	meta, err := s.Load(runID)
	if err != nil {
		return nil, err
	}

	data := &ExportData{Run: *meta, Epochs: make([]EpochData, 0, meta.Epochs)}
	for k := 1; k <= meta.Epochs; k++ {
		traj, err := s.LoadEpoch(runID, k)
		if err != nil {
			return nil, err
		}
		ed := EpochData{Epoch: k, Times: traj.Times(), States: make([][]float64, traj.Len())}
		for i, sample := range traj.Samples {
			ed.States[i] = sample.State
		}
		data.Epochs = append(data.Epochs, ed)
	}
	return data, nil
}

func ExportJSON(w io.Writer, data *ExportData) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(data)
}

// ExportCSV writes traj in the same layout as the stored epoch files.
func ExportCSV(w io.Writer, traj *dynamo.Trajectory) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader(traj.Dim())); err != nil {
		return err
	}
	for _, sample := range traj.Samples {
		row := make([]string, 0, len(sample.State)+1)
		row = append(row, formatFloat(sample.Time))
		for _, val := range sample.State {
			row = append(row, formatFloat(val))
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
