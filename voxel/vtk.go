package voxel

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strings"

	"github.com/BlueQuartzSoftware/DREAM3D-sub042/grain"
	"github.com/BlueQuartzSoftware/DREAM3D-sub042/internal/d3"
	"github.com/chewxy/math32"
	"github.com/soypat/glgl/math/ms3"
)

// Cell array names of VTK files.
const (
	vtkGrainIDs = "GrainIds"
	vtkPhases   = "Phases"
	vtkEuler    = "EulerAngles"
	vtkKAM      = "KAM"
)

// CreateVTK writes v to a new file at path. See WriteVTK.
func CreateVTK(path string, v *Volume) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	bw := bufio.NewWriter(f)
	if err := WriteVTK(bw, v); err != nil {
		f.Close()
		return err
	}
	if err := bw.Flush(); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// WriteVTK writes v as a legacy binary VTK structured points dataset with
// the cell arrays GrainIds, Phases, EulerAngles and KAM. Values are big
// endian.
func WriteVTK(w io.Writer, v *Volume) error {
	d := v.dims
	_, err := fmt.Fprintf(w, "# vtk DataFile Version 2.0\nsynthetic microstructure\nBINARY\n"+
		"DATASET STRUCTURED_POINTS\nDIMENSIONS %d %d %d\nORIGIN 0 0 0\nSPACING %g %g %g\nCELL_DATA %d\n",
		d[0]+1, d[1]+1, d[2]+1, v.res, v.res, v.res, d.Len())
	if err != nil {
		return err
	}
	var buf [12]byte
	if err := writeScalars(w, vtkGrainIDs, "int", 1); err != nil {
		return err
	}
	for _, id := range v.IDs {
		binary.BigEndian.PutUint32(buf[:], uint32(id))
		if _, err := w.Write(buf[:4]); err != nil {
			return err
		}
	}
	if err := writeScalars(w, vtkPhases, "int", 1); err != nil {
		return err
	}
	for _, p := range v.Phases {
		binary.BigEndian.PutUint32(buf[:], uint32(p))
		if _, err := w.Write(buf[:4]); err != nil {
			return err
		}
	}
	if err := writeScalars(w, vtkEuler, "float", 3); err != nil {
		return err
	}
	for _, e := range v.Euler {
		if bad3F32(e) {
			return errors.New("voxel: inf/NaN Euler angles")
		}
		put3F32(buf[:], e)
		if _, err := w.Write(buf[:]); err != nil {
			return err
		}
	}
	if err := writeScalars(w, vtkKAM, "float", 1); err != nil {
		return err
	}
	for _, k := range v.KAM {
		binary.BigEndian.PutUint32(buf[:], math.Float32bits(k))
		if _, err := w.Write(buf[:4]); err != nil {
			return err
		}
	}
	_, err = io.WriteString(w, "\n")
	return err
}

func writeScalars(w io.Writer, name, typ string, comps int) error {
	_, err := fmt.Fprintf(w, "\nSCALARS %s %s %d\nLOOKUP_TABLE default\n", name, typ, comps)
	return err
}

// ReadVTK reads a volume written by WriteVTK. Periodicity is not stored in
// the file.
func ReadVTK(r io.Reader, periodic bool) (*Volume, error) {
	br := bufio.NewReader(r)
	var (
		dims  d3.Dims
		res   float64
		cells int
	)
	for i := 0; i < 8; i++ {
		line, err := readLine(br)
		if err != nil {
			return nil, fmt.Errorf("voxel: reading VTK header: %w", err)
		}
		switch {
		case i == 0 && !strings.HasPrefix(line, "# vtk DataFile"):
			return nil, errors.New("voxel: not a legacy VTK file")
		case i == 2 && line != "BINARY":
			return nil, fmt.Errorf("voxel: unsupported VTK encoding %q", line)
		case strings.HasPrefix(line, "DIMENSIONS"):
			_, err = fmt.Sscanf(line, "DIMENSIONS %d %d %d", &dims[0], &dims[1], &dims[2])
			dims = d3.Dims{dims[0] - 1, dims[1] - 1, dims[2] - 1}
		case strings.HasPrefix(line, "SPACING"):
			var sy, sz float64
			_, err = fmt.Sscanf(line, "SPACING %g %g %g", &res, &sy, &sz)
			if err == nil && (sy != res || sz != res) {
				err = errors.New("anisotropic spacing")
			}
		case strings.HasPrefix(line, "CELL_DATA"):
			_, err = fmt.Sscanf(line, "CELL_DATA %d", &cells)
		}
		if err != nil {
			return nil, fmt.Errorf("voxel: VTK header line %q: %w", line, err)
		}
	}
	v, err := NewVolume(dims, res, periodic)
	if err != nil {
		return nil, err
	}
	if cells != dims.Len() {
		return nil, fmt.Errorf("voxel: VTK has %d cells for %v voxels", cells, dims)
	}
	var buf [12]byte
	for _, name := range []string{vtkGrainIDs, vtkPhases, vtkEuler, vtkKAM} {
		if err := readScalars(br, name); err != nil {
			return nil, err
		}
		for n := 0; n < cells; n++ {
			switch name {
			case vtkEuler:
				if _, err := io.ReadFull(br, buf[:]); err != nil {
					return nil, fmt.Errorf("voxel: %s %d/%d: %w", name, n, cells, err)
				}
				v.Euler[n] = get3F32(buf[:])
			default:
				if _, err := io.ReadFull(br, buf[:4]); err != nil {
					return nil, fmt.Errorf("voxel: %s %d/%d: %w", name, n, cells, err)
				}
				x := binary.BigEndian.Uint32(buf[:])
				switch name {
				case vtkGrainIDs:
					v.IDs[n] = int32(x)
				case vtkPhases:
					v.Phases[n] = int32(x)
				default:
					v.KAM[n] = math.Float32frombits(x)
				}
			}
		}
	}
	return v, nil
}

// readScalars consumes the header of the named cell array.
func readScalars(br *bufio.Reader, name string) error {
	for {
		line, err := readLine(br)
		if err != nil {
			return fmt.Errorf("voxel: looking for %s: %w", name, err)
		}
		if line == "" {
			continue
		}
		if !strings.HasPrefix(line, "SCALARS "+name+" ") {
			return fmt.Errorf("voxel: expected %s array, got %q", name, line)
		}
		if _, err := readLine(br); err != nil { // LOOKUP_TABLE
			return err
		}
		return nil
	}
}

func readLine(br *bufio.Reader) (string, error) {
	line, err := br.ReadString('\n')
	if err != nil {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}

func put3F32(b []byte, f ms3.Vec) {
	_ = b[11] // early bounds check
	binary.BigEndian.PutUint32(b, math.Float32bits(f.X))
	binary.BigEndian.PutUint32(b[4:], math.Float32bits(f.Y))
	binary.BigEndian.PutUint32(b[8:], math.Float32bits(f.Z))
}

func get3F32(b []byte) ms3.Vec {
	_ = b[11] // early bounds check
	return ms3.Vec{
		X: math.Float32frombits(binary.BigEndian.Uint32(b)),
		Y: math.Float32frombits(binary.BigEndian.Uint32(b[4:])),
		Z: math.Float32frombits(binary.BigEndian.Uint32(b[8:])),
	}
}

func bad3F32(f ms3.Vec) bool {
	return math32.IsNaN(f.X) || math32.IsInf(f.X, 0) ||
		math32.IsNaN(f.Y) || math32.IsInf(f.Y, 0) ||
		math32.IsNaN(f.Z) || math32.IsInf(f.Z, 0)
}

// VTKSink writes finished volumes to a VTK file.
type VTKSink struct {
	Path string
}

// WriteVolume implements Sink.
func (s VTKSink) WriteVolume(v *Volume, _ []grain.Grain) error {
	return CreateVTK(s.Path, v)
}
