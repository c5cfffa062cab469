package audio

import (
	"fmt"
	"reflect"
)

// Initer is implemented by units that need the render parameters before
// they can produce audio.  InitAudio is the only place a unit may allocate.
type Initer interface {
	InitAudio(Params)
}

type Params struct {
	SampleRate float64
	BufferSize int
}

// DefaultParams matches the preferred hardware setup: 44.1 kHz with
// 512-frame buffers, about 11.6 ms per callback.
var DefaultParams = Params{SampleRate: 44100, BufferSize: 512}

func (p *Params) InitAudio(q Params) { *p = q }

// Frames converts a duration in seconds to a whole number of frames.
func (p Params) Frames(seconds float64) int {
	return int(seconds * p.SampleRate)
}

// Init walks x and calls InitAudio on every Initer it finds, descending into
// struct fields and array and slice elements that are not Initers themselves.
func Init(x interface{}, p Params) {
	if err := initVal(reflect.ValueOf(x), p); err != nil {
		panic("audio.Init: " + err.Error())
	}
}

var initerType = reflect.TypeOf(new(Initer)).Elem()

func initVal(v reflect.Value, p Params) (err error) {
	if v.Kind() == reflect.Ptr && v.IsNil() || !v.CanInterface() {
		return
	}

	v = reflect.Indirect(v)
	if v.CanAddr() && v.Type().Name() != "" && v.Kind() != reflect.Interface {
		v = v.Addr()
	}
	if x, ok := v.Interface().(Initer); ok {
		x.InitAudio(p)
		return
	}

	defer func() {
		if err != nil {
			err = fmt.Errorf("%s\n\t%#v", err, v)
		}
	}()
	if t := v.Type(); reflect.PtrTo(t).Implements(initerType) {
		return fmt.Errorf("%s does not implement audio.Initer but *%s does.\nInit stack:", t, t)
	}

	v = reflect.Indirect(v)
	switch v.Kind() {
	case reflect.Struct:
		for i := 0; i < v.NumField(); i++ {
			if err = initVal(v.Field(i), p); err != nil {
				return
			}
		}
	case reflect.Array, reflect.Slice:
		for i := 0; i < v.Len(); i++ {
			if err = initVal(v.Index(i), p); err != nil {
				return
			}
		}
	}

	return
}
