package frame

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/Faultbox/incubatio/internal/skeleton"
	"github.com/Faultbox/incubatio/pkg/math"
)

// File is a recorded skeleton frame on disk.
//
//	joints:
//	  - name: pelvis
//	    position: [0, 0, 1]
//	    rotation: [0, 0, 0, 1]
type File struct {
	Joints []Joint `yaml:"joints"`
}

// Joint is one entry of a frame file. Rotation is (x, y, z, w).
type Joint struct {
	Name     string     `yaml:"name,omitempty"`
	Position [3]float32 `yaml:"position"`
	Rotation [4]float32 `yaml:"rotation"`
}

// LoadFile reads a frame file into a snapshot.
func LoadFile(path string) (skeleton.Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return skeleton.Snapshot{}, err
	}

	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return skeleton.Snapshot{}, fmt.Errorf("parsing frame file %s: %w", path, err)
	}
	return f.Snapshot(), nil
}

// Snapshot converts the file into joint arrays.
func (f File) Snapshot() skeleton.Snapshot {
	snap := skeleton.Snapshot{
		Positions: make([]math.Vec3, len(f.Joints)),
		Rotations: make([]math.Vec4, len(f.Joints)),
	}
	for i, j := range f.Joints {
		snap.Positions[i] = math.Vec3{X: j.Position[0], Y: j.Position[1], Z: j.Position[2]}
		snap.Rotations[i] = math.Vec4(j.Rotation)
	}
	return snap
}

// FromSnapshot builds a frame file from joint arrays of equal length.
func FromSnapshot(snap skeleton.Snapshot) (File, error) {
	n := snap.JointCount()
	if n < 0 {
		return File{}, fmt.Errorf("snapshot has %d positions and %d rotations",
			len(snap.Positions), len(snap.Rotations))
	}
	f := File{Joints: make([]Joint, n)}
	for i := 0; i < n; i++ {
		p := snap.Positions[i]
		f.Joints[i] = Joint{
			Position: [3]float32{p.X, p.Y, p.Z},
			Rotation: snap.Rotations[i],
		}
	}
	return f, nil
}

// Save writes the frame file as YAML.
func (f File) Save(path string) error {
	data, err := yaml.Marshal(f)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
