package cpengine

import (
	"fmt"
	"reflect"
	"unsafe"

	"github.com/jakecoffman/cp"
)

// cp v1.2.1 keeps several Chipmunk tunables in unexported fields without
// accessors. field reaches them by name; every use is listed here so an
// upgrade of cp only has to be checked against this file.
//
//	Space:   collisionSlop (getter), collisionBias, collisionPersistence
//	Body:    cog (setter)
//	Shape:   surfaceV (getter)
//	Circle:  c (offset)
//	Arbiter: e, u, surface_vr, swapped
func field(ptr any, name string) reflect.Value {
	v := reflect.ValueOf(ptr).Elem().FieldByName(name)
	if !v.IsValid() {
		panic(fmt.Sprintf("cpengine: %T has no field %q", ptr, name))
	}
	return reflect.NewAt(v.Type(), unsafe.Pointer(v.UnsafeAddr())).Elem()
}

func floatField(ptr any, name string) float64 {
	return field(ptr, name).Float()
}

func setFloatField(ptr any, name string, f float64) {
	field(ptr, name).SetFloat(f)
}

func uintField(ptr any, name string) uint {
	return uint(field(ptr, name).Uint())
}

func setUintField(ptr any, name string, u uint) {
	field(ptr, name).SetUint(uint64(u))
}

func boolField(ptr any, name string) bool {
	return field(ptr, name).Bool()
}

func vectorField(ptr any, name string) cp.Vector {
	return field(ptr, name).Interface().(cp.Vector)
}

func setVectorField(ptr any, name string, v cp.Vector) {
	field(ptr, name).Set(reflect.ValueOf(v))
}
