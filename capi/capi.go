//go:build capi

// The flat C-callable surface of the bridge, built as a c-shared or
// c-archive library:
//
//	go build -tags capi -buildmode=c-shared ./capi
//
// Handles cross the boundary as uintptr values minted with runtime/cgo;
// 0 is the null handle. Strings returned by the *_name/_error functions are
// owned by the library and stay valid until the next call that returns a
// string for the same family; callers must not free them.
package main

/*
#include <stdint.h>
#include <stdlib.h>
*/
import "C"

import (
	"runtime/cgo"
	"unsafe"

	"github.com/kovidgoyal/colorbridge/cms"
	"github.com/kovidgoyal/colorbridge/imagein"
)

// Per-family string slots handed out to C. Each new string frees the
// previous one, mirroring the "valid until the next call" contract.
var (
	cmsStr unsafe.Pointer
	imgStr unsafe.Pointer
)

func handOut(slot *unsafe.Pointer, s string) *C.char {
	if *slot != nil {
		C.free(*slot)
		*slot = nil
	}
	if s == "" {
		return nil
	}
	p := C.CString(s)
	*slot = unsafe.Pointer(p)
	return p
}

func goString(p *C.char) string {
	if p == nil {
		return ""
	}
	return C.GoString(p)
}

func configFrom(h C.uintptr_t) *cms.Config {
	if h == 0 {
		return nil
	}
	c, _ := cgo.Handle(h).Value().(*cms.Config)
	return c
}

func transformFrom(h C.uintptr_t) *cms.Transform {
	if h == 0 {
		return nil
	}
	t, _ := cgo.Handle(h).Value().(*cms.Transform)
	return t
}

func evaluatorFrom(h C.uintptr_t) *cms.Evaluator {
	if h == 0 {
		return nil
	}
	e, _ := cgo.Handle(h).Value().(*cms.Evaluator)
	return e
}

func imageFrom(h C.uintptr_t) *imagein.Handle {
	if h == 0 {
		return nil
	}
	i, _ := cgo.Handle(h).Value().(*imagein.Handle)
	return i
}

//export cb_cms_get_last_error
func cb_cms_get_last_error() *C.char {
	err := cms.LastError()
	if err == nil {
		return handOut(&cmsStr, "")
	}
	return handOut(&cmsStr, err.Error())
}

//export cb_config_create_from_file
func cb_config_create_from_file(path *C.char) C.uintptr_t {
	cfg := cms.CreateFromFile(goString(path))
	if cfg == nil {
		return 0
	}
	return C.uintptr_t(cgo.NewHandle(cfg))
}

//export cb_config_create_from_env
func cb_config_create_from_env() C.uintptr_t {
	cfg := cms.CreateFromEnv()
	if cfg == nil {
		return 0
	}
	return C.uintptr_t(cgo.NewHandle(cfg))
}

//export cb_config_create_builtin
func cb_config_create_builtin(identifier *C.char) C.uintptr_t {
	cfg := cms.CreateBuiltin(goString(identifier))
	if cfg == nil {
		return 0
	}
	return C.uintptr_t(cgo.NewHandle(cfg))
}

//export cb_config_destroy
func cb_config_destroy(h C.uintptr_t) {
	if h == 0 {
		return
	}
	configFrom(h).Destroy()
	cgo.Handle(h).Delete()
}

//export cb_config_num_color_spaces
func cb_config_num_color_spaces(h C.uintptr_t) C.int {
	return C.int(configFrom(h).NumColorSpaces())
}

//export cb_config_color_space_name
func cb_config_color_space_name(h C.uintptr_t, index C.int) *C.char {
	return handOut(&cmsStr, configFrom(h).ColorSpaceName(int(index)))
}

//export cb_config_get_role
func cb_config_get_role(h C.uintptr_t, role *C.char) *C.char {
	return handOut(&cmsStr, configFrom(h).Role(goString(role)))
}

//export cb_config_num_displays
func cb_config_num_displays(h C.uintptr_t) C.int {
	return C.int(configFrom(h).NumDisplays())
}

//export cb_config_display_name
func cb_config_display_name(h C.uintptr_t, index C.int) *C.char {
	return handOut(&cmsStr, configFrom(h).Display(int(index)))
}

//export cb_config_default_display
func cb_config_default_display(h C.uintptr_t) *C.char {
	return handOut(&cmsStr, configFrom(h).DefaultDisplay())
}

//export cb_config_num_views
func cb_config_num_views(h C.uintptr_t, display *C.char) C.int {
	return C.int(configFrom(h).NumViews(goString(display)))
}

//export cb_config_view_name
func cb_config_view_name(h C.uintptr_t, display *C.char, index C.int) *C.char {
	return handOut(&cmsStr, configFrom(h).View(goString(display), int(index)))
}

//export cb_config_default_view
func cb_config_default_view(h C.uintptr_t, display *C.char) *C.char {
	return handOut(&cmsStr, configFrom(h).DefaultView(goString(display)))
}

//export cb_transform_create
func cb_transform_create(h C.uintptr_t, src, dst *C.char) C.uintptr_t {
	t := cms.NewTransform(configFrom(h), goString(src), goString(dst))
	if t == nil {
		return 0
	}
	return C.uintptr_t(cgo.NewHandle(t))
}

//export cb_transform_create_display_view
func cb_transform_create_display_view(h C.uintptr_t, src, display, view *C.char) C.uintptr_t {
	t := cms.NewDisplayTransform(configFrom(h), goString(src), goString(display), goString(view))
	if t == nil {
		return 0
	}
	return C.uintptr_t(cgo.NewHandle(t))
}

//export cb_transform_destroy
func cb_transform_destroy(h C.uintptr_t) {
	if h == 0 {
		return
	}
	transformFrom(h).Destroy()
	cgo.Handle(h).Delete()
}

//export cb_evaluator_create
func cb_evaluator_create(h C.uintptr_t) C.uintptr_t {
	e := cms.NewEvaluator(transformFrom(h))
	if e == nil {
		return 0
	}
	return C.uintptr_t(cgo.NewHandle(e))
}

//export cb_evaluator_destroy
func cb_evaluator_destroy(h C.uintptr_t) {
	if h == 0 {
		return
	}
	evaluatorFrom(h).Destroy()
	cgo.Handle(h).Delete()
}

//export cb_evaluator_is_noop
func cb_evaluator_is_noop(h C.uintptr_t) C.int {
	if evaluatorFrom(h).IsNoOp() {
		return 1
	}
	return 0
}

//export cb_evaluator_apply_rgba
func cb_evaluator_apply_rgba(h C.uintptr_t, pixels *C.float, width, height C.int) {
	if pixels == nil || width <= 0 || height <= 0 {
		return
	}
	n := int(width) * int(height) * 4
	buf := unsafe.Slice((*float32)(unsafe.Pointer(pixels)), n)
	evaluatorFrom(h).ApplyRGBA(buf, int(width), int(height))
}

//export cb_evaluator_apply_rgb_pixel
func cb_evaluator_apply_rgb_pixel(h C.uintptr_t, pixel *C.float) {
	if pixel == nil {
		return
	}
	buf := unsafe.Slice((*float32)(unsafe.Pointer(pixel)), 3)
	evaluatorFrom(h).ApplyRGBPixel(buf)
}

//export cb_image_get_last_error
func cb_image_get_last_error() *C.char {
	err := imagein.LastError()
	if err == nil {
		return handOut(&imgStr, "")
	}
	return handOut(&imgStr, err.Error())
}

//export cb_image_open
func cb_image_open(path *C.char) C.uintptr_t {
	h := imagein.Open(goString(path))
	if h == nil {
		return 0
	}
	return C.uintptr_t(cgo.NewHandle(h))
}

//export cb_image_destroy
func cb_image_destroy(h C.uintptr_t) {
	if h == 0 {
		return
	}
	imageFrom(h).Destroy()
	cgo.Handle(h).Delete()
}

//export cb_image_width
func cb_image_width(h C.uintptr_t) C.int {
	return C.int(imageFrom(h).Width())
}

//export cb_image_height
func cb_image_height(h C.uintptr_t) C.int {
	return C.int(imageFrom(h).Height())
}

//export cb_image_channels
func cb_image_channels(h C.uintptr_t) C.int {
	return C.int(imageFrom(h).Channels())
}

//export cb_image_sample_format
func cb_image_sample_format(h C.uintptr_t) C.int {
	return C.int(imageFrom(h).SampleFormat())
}

//export cb_image_color_space
func cb_image_color_space(h C.uintptr_t) *C.char {
	return handOut(&imgStr, imageFrom(h).ColorSpaceTag())
}

//export cb_image_read_rgba_f32
func cb_image_read_rgba_f32(h C.uintptr_t, dst *C.float, dstLen C.int) C.int {
	if dst == nil || dstLen < 0 {
		return 0
	}
	buf := unsafe.Slice((*float32)(unsafe.Pointer(dst)), int(dstLen))
	if imageFrom(h).ReadRGBAFloat32(buf) {
		return 1
	}
	return 0
}

// Required for c-shared and c-archive builds.
func main() {}
