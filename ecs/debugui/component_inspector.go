package debugui

import (
	"fmt"
	"reflect"

	"github.com/AllenDang/cimgui-go/imgui"
	"github.com/plus3/scenecs/ecs"
)

// ComponentInspector shows and edits the exported fields of an entity's components.
// Edits write straight into component storage.
type ComponentInspector struct{}

func NewComponentInspector() *ComponentInspector {
	return &ComponentInspector{}
}

func (ci *ComponentInspector) Render(entities *ecs.EntityManager, e ecs.Entity) {
	if !imgui.BeginV("Component Inspector", nil, imgui.WindowFlagsNone) {
		imgui.End()
		return
	}
	defer imgui.End()

	if e.IsNil() {
		imgui.Text("No entity selected")
		return
	}
	if !entities.IsValid(e) {
		imgui.Text(fmt.Sprintf("%s is no longer valid", e))
		return
	}

	imgui.Text(e.String())
	imgui.Text(fmt.Sprintf("Mask: %s", entities.Mask(e)))
	imgui.Separator()

	for _, component := range entities.Components(e) {
		val := reflect.ValueOf(component).Elem()
		if imgui.TreeNodeStr(val.Type().String()) {
			ci.renderValue(val)
			imgui.TreePop()
		}
	}
}

func (ci *ComponentInspector) renderValue(val reflect.Value) {
	if val.Kind() != reflect.Struct {
		ci.renderField("value", val)
		return
	}
	for _, field := range inspectorFields.get(val.Type()) {
		fv := val.Field(field.Index)
		if field.IsPointer {
			if fv.IsNil() {
				imgui.Text(fmt.Sprintf("%s: nil", field.Name))
				continue
			}
			fv = fv.Elem()
		}
		ci.renderField(field.Name, fv)
	}
}

func (ci *ComponentInspector) renderField(name string, val reflect.Value) {
	id := fmt.Sprintf("##%s%p", name, val.Addr().Interface())

	switch val.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		v := int32(val.Int())
		ci.label(name)
		if imgui.InputInt(id, &v) {
			setNumber(val, float64(v))
		}

	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		v := int32(val.Uint())
		ci.label(name)
		if imgui.InputInt(id, &v) && v >= 0 {
			setNumber(val, float64(v))
		}

	case reflect.Float32, reflect.Float64:
		v := float32(val.Float())
		ci.label(name)
		if imgui.InputFloat(id, &v) {
			setNumber(val, float64(v))
		}

	case reflect.Bool:
		v := val.Bool()
		if imgui.Checkbox(name+id, &v) {
			val.SetBool(v)
		}

	case reflect.String:
		v := val.String()
		ci.label(name)
		imgui.SetNextItemWidth(200)
		if imgui.InputTextWithHint(id, "", &v, imgui.InputTextFlagsNone, nil) {
			val.SetString(v)
		}

	case reflect.Array:
		if imgui.TreeNodeStr(fmt.Sprintf("%s [%d]", name, val.Len())) {
			for i := range val.Len() {
				ci.renderField(fmt.Sprintf("%s[%d]", name, i), val.Index(i))
			}
			imgui.TreePop()
		}

	case reflect.Struct:
		if imgui.TreeNodeStr(name) {
			ci.renderValue(val)
			imgui.TreePop()
		}

	case reflect.Slice:
		imgui.Text(fmt.Sprintf("%s: [%d items]", name, val.Len()))

	case reflect.Map:
		imgui.Text(fmt.Sprintf("%s: map[%d items]", name, val.Len()))

	default:
		if val.CanInterface() {
			imgui.Text(fmt.Sprintf("%s: %v", name, val.Interface()))
		} else {
			imgui.Text(fmt.Sprintf("%s: <%s>", name, val.Type()))
		}
	}
}

func (ci *ComponentInspector) label(name string) {
	imgui.Text(name + ":")
	imgui.SameLine()
	imgui.SetNextItemWidth(150)
}

// setNumber stores x into a numeric field, reporting false if the field cannot
// be set or x overflows it.
func setNumber(val reflect.Value, x float64) bool {
	if !val.CanSet() {
		return false
	}
	switch val.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		if val.OverflowInt(int64(x)) {
			return false
		}
		val.SetInt(int64(x))
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		if x < 0 || val.OverflowUint(uint64(x)) {
			return false
		}
		val.SetUint(uint64(x))
	case reflect.Float32, reflect.Float64:
		if val.OverflowFloat(x) {
			return false
		}
		val.SetFloat(x)
	default:
		return false
	}
	return true
}
