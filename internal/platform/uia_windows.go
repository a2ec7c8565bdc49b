//go:build windows

package platform

import (
	"fmt"
	"strings"
	"syscall"
	"unsafe"

	"github.com/go-ole/go-ole"
)

// UI Automation client bindings. go-ole has no generated wrappers for the
// IUIAutomation family, so the vtables are declared by hand and invoked
// through raw syscalls, the usual approach for UIA clients in Go.

var (
	clsidCUIAutomation = ole.NewGUID("{FF48DBA4-60EF-4201-AA87-54103EEF594E}")
	iidIUIAutomation   = ole.NewGUID("{30CBE57D-D9D0-452A-AB13-7AC5AC4825EE}")
)

// UIA property ids consumed by this client.
const (
	propControlType             = 30003
	propName                    = 30005
	propClassName               = 30012
	propSelectionItemIsSelected = 30079
)

// UIA pattern ids.
const (
	patternInvoke        = 10000
	patternSelectionItem = 10010
)

// Native TreeScope values.
const (
	uiaScopeChildren    = 2
	uiaScopeDescendants = 4
)

// HRESULTs that signal a vanished element or provider rather than a
// client-side fault.
const (
	hrElementNotAvailable  = 0x80040201 // UIA_E_ELEMENTNOTAVAILABLE
	hrRPCServerUnavailable = 0x800706BA
	hrRPCCallFailed        = 0x800706BE
)

// staleHRESULT reports whether an HRESULT means the element or its
// provider process is gone.
func staleHRESULT(hr uintptr) bool {
	switch uint32(hr) {
	case hrElementNotAvailable, hrRPCServerUnavailable, hrRPCCallFailed:
		return true
	}
	return false
}

// comErr maps an HRESULT to either the stale sentinel or a descriptive
// error for the given operation.
func comErr(op string, hr uintptr) error {
	if staleHRESULT(hr) {
		return fmt.Errorf("%s: %w", op, ErrElementStale)
	}
	return fmt.Errorf("%s failed: %s", op, ole.NewError(hr).Error())
}

type iUIAutomationVtbl struct {
	ole.IUnknownVtbl
	CompareElements                   uintptr
	CompareRuntimeIds                 uintptr
	GetRootElement                    uintptr
	ElementFromHandle                 uintptr
	ElementFromPoint                  uintptr
	GetFocusedElement                 uintptr
	GetRootElementBuildCache          uintptr
	ElementFromHandleBuildCache       uintptr
	ElementFromPointBuildCache        uintptr
	GetFocusedElementBuildCache       uintptr
	CreateTreeWalker                  uintptr
	GetControlViewWalker              uintptr
	GetContentViewWalker              uintptr
	GetRawViewWalker                  uintptr
	GetRawViewCondition               uintptr
	GetControlViewCondition           uintptr
	GetContentViewCondition           uintptr
	CreateCacheRequest                uintptr
	CreateTrueCondition               uintptr
	CreateFalseCondition              uintptr
	CreatePropertyCondition           uintptr
	CreatePropertyConditionEx         uintptr
	CreateAndCondition                uintptr
	CreateAndConditionFromArray       uintptr
	CreateAndConditionFromNativeArray uintptr
	CreateOrCondition                 uintptr
	CreateOrConditionFromArray        uintptr
	CreateOrConditionFromNativeArray  uintptr
	CreateNotCondition                uintptr
}

type iUIAutomation struct {
	ole.IUnknown
}

func (v *iUIAutomation) vtbl() *iUIAutomationVtbl {
	return (*iUIAutomationVtbl)(unsafe.Pointer(v.RawVTable))
}

type iUIAutomationElementVtbl struct {
	ole.IUnknownVtbl
	SetFocus                  uintptr
	GetRuntimeId              uintptr
	FindFirst                 uintptr
	FindAll                   uintptr
	FindFirstBuildCache       uintptr
	FindAllBuildCache         uintptr
	BuildUpdatedCache         uintptr
	GetCurrentPropertyValue   uintptr
	GetCurrentPropertyValueEx uintptr
	GetCachedPropertyValue    uintptr
	GetCachedPropertyValueEx  uintptr
	GetCurrentPatternAs       uintptr
	GetCachedPatternAs        uintptr
	GetCurrentPattern         uintptr
	GetCachedPattern          uintptr
}

type iUIAutomationElement struct {
	ole.IUnknown
}

func (v *iUIAutomationElement) vtbl() *iUIAutomationElementVtbl {
	return (*iUIAutomationElementVtbl)(unsafe.Pointer(v.RawVTable))
}

type iUIAutomationElementArrayVtbl struct {
	ole.IUnknownVtbl
	GetLength  uintptr
	GetElement uintptr
}

type iUIAutomationElementArray struct {
	ole.IUnknown
}

func (v *iUIAutomationElementArray) vtbl() *iUIAutomationElementArrayVtbl {
	return (*iUIAutomationElementArrayVtbl)(unsafe.Pointer(v.RawVTable))
}

type iUIAutomationConditionVtbl struct {
	ole.IUnknownVtbl
}

type iUIAutomationCondition struct {
	ole.IUnknown
}

// IUIAutomationInvokePattern: Invoke is the first method past IUnknown.
type iUIAutomationInvokePatternVtbl struct {
	ole.IUnknownVtbl
	Invoke uintptr
}

type iUIAutomationInvokePattern struct {
	ole.IUnknown
}

// IUIAutomationSelectionItemPattern: Select, AddToSelection,
// RemoveFromSelection, get_CurrentIsSelected, ...
type iUIAutomationSelectionItemPatternVtbl struct {
	ole.IUnknownVtbl
	Select               uintptr
	AddToSelection       uintptr
	RemoveFromSelection  uintptr
	GetCurrentIsSelected uintptr
}

type iUIAutomationSelectionItemPattern struct {
	ole.IUnknown
}

// uiAutomation wraps the process-wide CUIAutomation COM object.
type uiAutomation struct {
	auto *iUIAutomation
}

// newUIAutomation initializes COM for multithreaded use and creates the
// UI Automation client. Walker goroutines all share this one client; UIA
// client objects are MTA-safe.
func newUIAutomation() (*uiAutomation, error) {
	if err := ole.CoInitializeEx(0, ole.COINIT_MULTITHREADED); err != nil {
		// RPC_E_CHANGED_MODE: the host process already initialized COM in
		// a different apartment model; the existing apartment still works.
		oleErr, ok := err.(*ole.OleError)
		if !ok || uint32(oleErr.Code()) != 0x80010106 {
			return nil, fmt.Errorf("CoInitializeEx failed: %w", err)
		}
	}

	unknown, err := ole.CreateInstance(clsidCUIAutomation, iidIUIAutomation)
	if err != nil {
		return nil, fmt.Errorf("CoCreateInstance(CUIAutomation) failed: %w", err)
	}
	return &uiAutomation{auto: (*iUIAutomation)(unsafe.Pointer(unknown))}, nil
}

// elementFromHandle resolves a window handle to its root element.
func (u *uiAutomation) elementFromHandle(hwnd uintptr) (Element, error) {
	var raw *iUIAutomationElement
	hr, _, _ := syscall.SyscallN(u.auto.vtbl().ElementFromHandle,
		uintptr(unsafe.Pointer(u.auto)),
		hwnd,
		uintptr(unsafe.Pointer(&raw)))
	if hr != 0 {
		return nil, comErr("ElementFromHandle", hr)
	}
	if raw == nil {
		return nil, fmt.Errorf("ElementFromHandle: %w", ErrElementStale)
	}
	return &uiaElement{auto: u, raw: raw}, nil
}

// buildCondition compiles a Condition into a native IUIAutomationCondition.
// The caller releases the result.
func (u *uiAutomation) buildCondition(cond Condition) (*iUIAutomationCondition, error) {
	var parts []*iUIAutomationCondition
	release := func(cs []*iUIAutomationCondition) {
		for _, c := range cs {
			c.Release()
		}
	}

	if cond.ControlType != 0 {
		v := ole.NewVariant(ole.VT_I4, int64(cond.ControlType))
		c, err := u.propertyCondition(propControlType, &v, false)
		if err != nil {
			return nil, err
		}
		parts = append(parts, c)
	}

	if len(cond.ClassNames) > 0 {
		var classCond *iUIAutomationCondition
		for _, cn := range cond.ClassNames {
			bstr := ole.SysAllocStringLen(cn)
			v := ole.NewVariant(ole.VT_BSTR, int64(uintptr(unsafe.Pointer(bstr))))
			c, err := u.propertyCondition(propClassName, &v, false)
			ole.SysFreeString(bstr)
			if err != nil {
				release(parts)
				if classCond != nil {
					classCond.Release()
				}
				return nil, err
			}
			if classCond == nil {
				classCond = c
				continue
			}
			merged, err := u.orCondition(classCond, c)
			classCond.Release()
			c.Release()
			if err != nil {
				release(parts)
				return nil, err
			}
			classCond = merged
		}
		parts = append(parts, classCond)
	}

	if cond.Name != "" {
		bstr := ole.SysAllocStringLen(cond.Name)
		v := ole.NewVariant(ole.VT_BSTR, int64(uintptr(unsafe.Pointer(bstr))))
		c, err := u.propertyCondition(propName, &v, cond.NameFold)
		ole.SysFreeString(bstr)
		if err != nil {
			release(parts)
			return nil, err
		}
		parts = append(parts, c)
	}

	if len(parts) == 0 {
		return u.trueCondition()
	}

	combined := parts[0]
	for _, c := range parts[1:] {
		merged, err := u.andCondition(combined, c)
		combined.Release()
		c.Release()
		if err != nil {
			return nil, err
		}
		combined = merged
	}
	return combined, nil
}

func (u *uiAutomation) propertyCondition(propID int32, value *ole.VARIANT, ignoreCase bool) (*iUIAutomationCondition, error) {
	var out *iUIAutomationCondition
	if ignoreCase {
		// PropertyConditionFlags_IgnoreCase = 1
		hr, _, _ := syscall.SyscallN(u.auto.vtbl().CreatePropertyConditionEx,
			uintptr(unsafe.Pointer(u.auto)),
			uintptr(propID),
			uintptr(unsafe.Pointer(value)),
			1,
			uintptr(unsafe.Pointer(&out)))
		if hr != 0 {
			return nil, comErr("CreatePropertyConditionEx", hr)
		}
		return out, nil
	}
	hr, _, _ := syscall.SyscallN(u.auto.vtbl().CreatePropertyCondition,
		uintptr(unsafe.Pointer(u.auto)),
		uintptr(propID),
		uintptr(unsafe.Pointer(value)),
		uintptr(unsafe.Pointer(&out)))
	if hr != 0 {
		return nil, comErr("CreatePropertyCondition", hr)
	}
	return out, nil
}

func (u *uiAutomation) trueCondition() (*iUIAutomationCondition, error) {
	var out *iUIAutomationCondition
	hr, _, _ := syscall.SyscallN(u.auto.vtbl().CreateTrueCondition,
		uintptr(unsafe.Pointer(u.auto)),
		uintptr(unsafe.Pointer(&out)))
	if hr != 0 {
		return nil, comErr("CreateTrueCondition", hr)
	}
	return out, nil
}

func (u *uiAutomation) andCondition(a, b *iUIAutomationCondition) (*iUIAutomationCondition, error) {
	var out *iUIAutomationCondition
	hr, _, _ := syscall.SyscallN(u.auto.vtbl().CreateAndCondition,
		uintptr(unsafe.Pointer(u.auto)),
		uintptr(unsafe.Pointer(a)),
		uintptr(unsafe.Pointer(b)),
		uintptr(unsafe.Pointer(&out)))
	if hr != 0 {
		return nil, comErr("CreateAndCondition", hr)
	}
	return out, nil
}

func (u *uiAutomation) orCondition(a, b *iUIAutomationCondition) (*iUIAutomationCondition, error) {
	var out *iUIAutomationCondition
	hr, _, _ := syscall.SyscallN(u.auto.vtbl().CreateOrCondition,
		uintptr(unsafe.Pointer(u.auto)),
		uintptr(unsafe.Pointer(a)),
		uintptr(unsafe.Pointer(b)),
		uintptr(unsafe.Pointer(&out)))
	if hr != 0 {
		return nil, comErr("CreateOrCondition", hr)
	}
	return out, nil
}

// uiaElement implements Element over IUIAutomationElement.
type uiaElement struct {
	auto *uiAutomation
	raw  *iUIAutomationElement
}

// property reads one current property value as a VARIANT.
func (e *uiaElement) property(propID int32) (ole.VARIANT, error) {
	var value ole.VARIANT
	ole.VariantInit(&value)
	hr, _, _ := syscall.SyscallN(e.raw.vtbl().GetCurrentPropertyValue,
		uintptr(unsafe.Pointer(e.raw)),
		uintptr(propID),
		uintptr(unsafe.Pointer(&value)))
	if hr != 0 {
		return value, comErr("GetCurrentPropertyValue", hr)
	}
	return value, nil
}

func (e *uiaElement) stringProperty(propID int32) (string, error) {
	value, err := e.property(propID)
	if err != nil {
		return "", err
	}
	defer value.Clear()
	return value.ToString(), nil
}

func (e *uiaElement) Name() (string, error) {
	return e.stringProperty(propName)
}

func (e *uiaElement) ClassName() (string, error) {
	return e.stringProperty(propClassName)
}

func (e *uiaElement) ControlType() (ControlType, error) {
	value, err := e.property(propControlType)
	if err != nil {
		return 0, err
	}
	defer value.Clear()
	switch v := value.Value().(type) {
	case int32:
		return ControlType(v), nil
	case int64:
		return ControlType(v), nil
	default:
		return 0, fmt.Errorf("unexpected control type variant %T", v)
	}
}

func (e *uiaElement) RuntimeID() (string, error) {
	var sa *ole.SafeArray
	hr, _, _ := syscall.SyscallN(e.raw.vtbl().GetRuntimeId,
		uintptr(unsafe.Pointer(e.raw)),
		uintptr(unsafe.Pointer(&sa)))
	if hr != 0 {
		return "", comErr("GetRuntimeId", hr)
	}
	if sa == nil {
		return "", fmt.Errorf("GetRuntimeId: %w", ErrElementStale)
	}

	conv := &ole.SafeArrayConversion{Array: sa}
	defer conv.Release()

	values := conv.ToValueArray()
	ids := make([]string, 0, len(values))
	for _, v := range values {
		ids = append(ids, fmt.Sprint(v))
	}
	return strings.Join(ids, "."), nil
}

func (e *uiaElement) Children() ([]Element, error) {
	cond, err := e.auto.trueCondition()
	if err != nil {
		return nil, err
	}
	defer cond.Release()
	return e.findAllNative(uiaScopeChildren, cond)
}

func (e *uiaElement) FindAll(scope TreeScope, cond Condition) ([]Element, error) {
	nativeScope := uintptr(uiaScopeDescendants)
	if scope == ScopeChildren {
		nativeScope = uiaScopeChildren
	}

	nativeCond, err := e.auto.buildCondition(cond)
	if err != nil {
		return nil, err
	}
	defer nativeCond.Release()
	return e.findAllNative(nativeScope, nativeCond)
}

func (e *uiaElement) findAllNative(scope uintptr, cond *iUIAutomationCondition) ([]Element, error) {
	var array *iUIAutomationElementArray
	hr, _, _ := syscall.SyscallN(e.raw.vtbl().FindAll,
		uintptr(unsafe.Pointer(e.raw)),
		scope,
		uintptr(unsafe.Pointer(cond)),
		uintptr(unsafe.Pointer(&array)))
	if hr != 0 {
		return nil, comErr("FindAll", hr)
	}
	if array == nil {
		return nil, nil
	}
	defer array.Release()

	var length int32
	hr, _, _ = syscall.SyscallN(array.vtbl().GetLength,
		uintptr(unsafe.Pointer(array)),
		uintptr(unsafe.Pointer(&length)))
	if hr != 0 {
		return nil, comErr("ElementArray.Length", hr)
	}

	elements := make([]Element, 0, length)
	for i := int32(0); i < length; i++ {
		var raw *iUIAutomationElement
		hr, _, _ = syscall.SyscallN(array.vtbl().GetElement,
			uintptr(unsafe.Pointer(array)),
			uintptr(i),
			uintptr(unsafe.Pointer(&raw)))
		if hr != 0 || raw == nil {
			// The element vanished between FindAll and extraction.
			continue
		}
		elements = append(elements, &uiaElement{auto: e.auto, raw: raw})
	}
	return elements, nil
}

func (e *uiaElement) SelectionState() (bool, bool, error) {
	pattern, err := e.pattern(patternSelectionItem)
	if err != nil {
		return false, false, err
	}
	if pattern == nil {
		return false, false, nil
	}
	item := (*iUIAutomationSelectionItemPattern)(unsafe.Pointer(pattern))
	defer item.Release()

	var selected int32
	hr, _, _ := syscall.SyscallN(
		(*iUIAutomationSelectionItemPatternVtbl)(unsafe.Pointer(item.RawVTable)).GetCurrentIsSelected,
		uintptr(unsafe.Pointer(item)),
		uintptr(unsafe.Pointer(&selected)))
	if hr != 0 {
		return false, true, comErr("SelectionItem.IsSelected", hr)
	}
	return selected != 0, true, nil
}

func (e *uiaElement) Select() error {
	pattern, err := e.pattern(patternSelectionItem)
	if err != nil {
		return err
	}
	if pattern == nil {
		return fmt.Errorf("SelectionItem: %w", ErrPatternNotSupported)
	}
	item := (*iUIAutomationSelectionItemPattern)(unsafe.Pointer(pattern))
	defer item.Release()

	hr, _, _ := syscall.SyscallN(
		(*iUIAutomationSelectionItemPatternVtbl)(unsafe.Pointer(item.RawVTable)).Select,
		uintptr(unsafe.Pointer(item)))
	if hr != 0 {
		return comErr("SelectionItem.Select", hr)
	}
	return nil
}

func (e *uiaElement) Invoke() error {
	pattern, err := e.pattern(patternInvoke)
	if err != nil {
		return err
	}
	if pattern == nil {
		return fmt.Errorf("Invoke: %w", ErrPatternNotSupported)
	}
	invoke := (*iUIAutomationInvokePattern)(unsafe.Pointer(pattern))
	defer invoke.Release()

	hr, _, _ := syscall.SyscallN(
		(*iUIAutomationInvokePatternVtbl)(unsafe.Pointer(invoke.RawVTable)).Invoke,
		uintptr(unsafe.Pointer(invoke)))
	if hr != 0 {
		return comErr("Invoke.Invoke", hr)
	}
	return nil
}

// pattern fetches an interaction pattern object, returning (nil, nil)
// when the element does not expose it.
func (e *uiaElement) pattern(patternID int32) (*ole.IUnknown, error) {
	var unknown *ole.IUnknown
	hr, _, _ := syscall.SyscallN(e.raw.vtbl().GetCurrentPattern,
		uintptr(unsafe.Pointer(e.raw)),
		uintptr(patternID),
		uintptr(unsafe.Pointer(&unknown)))
	if hr != 0 {
		return nil, comErr("GetCurrentPattern", hr)
	}
	return unknown, nil
}
