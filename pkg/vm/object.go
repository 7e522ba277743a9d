package vm

import (
	"fmt"
	"strings"
	"sync/atomic"

	cmap "github.com/orcaman/concurrent-map"

	"github.com/daimatz/minijvm/pkg/interp"
)

var objectIDs atomic.Uint32

// Object is an instance of a class. Fields holds instance field values by
// name, initialized to their type defaults.
type Object struct {
	Class  *Class
	Fields cmap.ConcurrentMap
	id     uint32
}

// Field returns the value of an instance field.
func (o *Object) Field(name string) (interp.Value, bool) {
	v, ok := o.Fields.Get(name)
	if !ok {
		return interp.Value{}, false
	}
	return v.(interp.Value), true
}

// SetField stores the value of an instance field.
func (o *Object) SetField(name string, v interp.Value) {
	o.Fields.Set(name, v)
}

func (o *Object) String() string {
	return fmt.Sprintf("%s@%x", strings.ReplaceAll(o.Class.ClassName(), "/", "."), o.id)
}
