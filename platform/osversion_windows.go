//go:build windows

package platform

import (
	"fmt"
	"runtime"
	"strings"
	"unsafe"

	"github.com/go-ole/go-ole"
	"github.com/go-ole/go-ole/oleutil"
	"golang.org/x/sys/windows"
)

// OSVersion reports the running Windows edition and build.
// The caption comes from WMI. When WMI is unavailable the build numbers
// from RtlGetVersion are used and the name is synthesized.
func OSVersion() (OSInfo, error) {
	major, minor, build := getWindowsVersion()
	info := OSInfo{
		Version: fmt.Sprintf("%d.%d.%d", major, minor, build),
		Build:   build,
		Server:  isServerViaProductType(),
	}

	caption, err := wmiCaption()
	if err != nil {
		info.Name = fmt.Sprintf("Windows %d.%d (Build %d)", major, minor, build)
		return info, nil
	}
	info.Name = strings.TrimSpace(caption)
	return info, nil
}

// wmiCaption returns Win32_OperatingSystem.Caption.
func wmiCaption() (string, error) {
	// COM is thread-bound
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	if err := ole.CoInitializeEx(0, ole.COINIT_MULTITHREADED); err != nil {
		if oleErr, ok := err.(*ole.OleError); ok {
			code := oleErr.Code()
			if code != 0 && code != 1 { // S_OK=0, S_FALSE=1
				return "", fmt.Errorf("COM initialization failed: %s", oleErrorString(err))
			}
		}
	}
	defer ole.CoUninitialize()

	locator, err := oleutil.CreateObject("WbemScripting.SWbemLocator")
	if err != nil {
		return "", fmt.Errorf("create WMI locator: %s", oleErrorString(err))
	}
	defer locator.Release()

	wmi, err := locator.QueryInterface(ole.IID_IDispatch)
	if err != nil {
		return "", fmt.Errorf("query WMI dispatch: %s", oleErrorString(err))
	}
	defer wmi.Release()

	serviceRaw, err := oleutil.CallMethod(wmi, "ConnectServer")
	if err != nil {
		return "", fmt.Errorf("connect WMI: %s", oleErrorString(err))
	}
	service := serviceRaw.ToIDispatch()
	defer service.Release()

	resultRaw, err := oleutil.CallMethod(service, "ExecQuery", "SELECT Caption, Version FROM Win32_OperatingSystem")
	if err != nil {
		return "", fmt.Errorf("query Win32_OperatingSystem: %s", oleErrorString(err))
	}
	result := resultRaw.ToIDispatch()
	defer result.Release()

	itemRaw, err := oleutil.CallMethod(result, "ItemIndex", 0)
	if err != nil {
		return "", fmt.Errorf("read Win32_OperatingSystem: %s", oleErrorString(err))
	}
	item := itemRaw.ToIDispatch()
	defer item.Release()

	caption, err := oleutil.GetProperty(item, "Caption")
	if err != nil {
		return "", fmt.Errorf("read caption: %s", oleErrorString(err))
	}
	defer caption.Clear()

	return caption.ToString(), nil
}

func oleErrorString(err error) string {
	if err == nil {
		return "unknown error"
	}
	if oleErr, ok := err.(*ole.OleError); ok {
		return fmt.Sprintf("%s (HRESULT: 0x%08X)", oleErr.Error(), uint32(oleErr.Code()))
	}
	return err.Error()
}

// getWindowsVersion returns major, minor, build numbers.
func getWindowsVersion() (major, minor, build uint32) {
	info := rtlGetVersion()
	return info.MajorVersion, info.MinorVersion, info.BuildNumber
}

const (
	productTypeDomainController = 2
	productTypeServer           = 3
)

// IsWindowsServer returns true if running on Windows Server edition.
func IsWindowsServer() bool {
	return isServerViaProductType()
}

func isServerViaProductType() bool {
	info := rtlGetVersion()
	return info.ProductType == productTypeServer || info.ProductType == productTypeDomainController
}

type osVersionInfoExW struct {
	OSVersionInfoSize uint32
	MajorVersion      uint32
	MinorVersion      uint32
	BuildNumber       uint32
	PlatformId        uint32
	CSDVersion        [128]uint16
	ServicePackMajor  uint16
	ServicePackMinor  uint16
	SuiteMask         uint16
	ProductType       byte
	Reserved          byte
}

// rtlGetVersion is used instead of GetVersion, which lies to unmanifested binaries.
func rtlGetVersion() osVersionInfoExW {
	ntdll := windows.NewLazySystemDLL("ntdll.dll")
	proc := ntdll.NewProc("RtlGetVersion")

	var info osVersionInfoExW
	info.OSVersionInfoSize = uint32(unsafe.Sizeof(info))
	proc.Call(uintptr(unsafe.Pointer(&info)))
	return info
}
