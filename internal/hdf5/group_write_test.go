package hdf5

import (
	"path/filepath"
	"reflect"
	"testing"
)

func TestDatasetInNestedGroup(t *testing.T) {
	testFile := filepath.Join(t.TempDir(), "nested_dataset.h5")

	f, err := Create(testFile)
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	level1, err := f.Root().CreateGroup("All_Data")
	if err != nil {
		t.Fatalf("CreateGroup level1 failed: %v", err)
	}
	level2, err := level1.CreateGroup("VIIRS-M5-SDR_All")
	if err != nil {
		t.Fatalf("CreateGroup level2 failed: %v", err)
	}
	// Each dataset moves the level2 header, which must relink through level1.
	if _, err := level2.CreateDataset("Reflectance", []uint16{1, 2, 3, 4, 5, 6}, WithShape(2, 3)); err != nil {
		t.Fatalf("CreateDataset failed: %v", err)
	}
	if _, err := level2.CreateDataset("ReflectanceFactors", []float32{0.5, 0}); err != nil {
		t.Fatalf("CreateDataset failed: %v", err)
	}
	if err := f.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	f2, err := Open(testFile)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer f2.Close()

	ds, err := f2.OpenDataset("/All_Data/VIIRS-M5-SDR_All/Reflectance")
	if err != nil {
		t.Fatalf("OpenDataset failed: %v", err)
	}
	if got := ds.Shape(); !reflect.DeepEqual(got, []uint64{2, 3}) {
		t.Errorf("Shape = %v, want [2 3]", got)
	}
	if _, err := f2.OpenDataset("/All_Data/VIIRS-M5-SDR_All/ReflectanceFactors"); err != nil {
		t.Errorf("second dataset unreachable: %v", err)
	}
}

func TestReadSliceContiguous(t *testing.T) {
	testFile := filepath.Join(t.TempDir(), "slice.h5")

	f, err := Create(testFile)
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	data := make([]int32, 20)
	for i := range data {
		data[i] = int32(i)
	}
	if _, err := f.Root().CreateDataset("ramp", data, WithShape(4, 5)); err != nil {
		t.Fatalf("CreateDataset failed: %v", err)
	}
	if err := f.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	f2, err := Open(testFile)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer f2.Close()
	ds, err := f2.OpenDataset("ramp")
	if err != nil {
		t.Fatalf("OpenDataset failed: %v", err)
	}

	got, err := ds.ReadSliceFloat64([]uint64{1, 2}, []uint64{2, 3})
	if err != nil {
		t.Fatalf("ReadSliceFloat64 failed: %v", err)
	}
	want := []float64{7, 8, 9, 12, 13, 14}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("ReadSliceFloat64 = %v, want %v", got, want)
	}

	if _, err := ds.ReadSliceFloat64([]uint64{3, 0}, []uint64{2, 1}); err == nil {
		t.Error("expected error for a slice past the last row")
	}
}

func TestWithShapeMismatch(t *testing.T) {
	f, err := Create(filepath.Join(t.TempDir(), "shape.h5"))
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	defer f.Close()

	if _, err := f.Root().CreateDataset("bad", []float64{1, 2, 3}, WithShape(2, 2)); err == nil {
		t.Error("expected error for 3 elements in a 2x2 shape")
	}
}
