package vendorlist

import (
	"fmt"
	"time"

	"github.com/benbjohnson/clock"

	"github.com/prebid/go-tcf/api"
	"github.com/prebid/go-tcf/errortypes"
)

// Active hides vendors whose deletion date has passed according to clk.
func Active(list api.VendorList, clk clock.Clock) api.VendorList {
	return activeVendorList{list: list, clock: clk}
}

type activeVendorList struct {
	list  api.VendorList
	clock clock.Clock
}

func (l activeVendorList) VendorListVersion() uint16 {
	return l.list.VendorListVersion()
}

func (l activeVendorList) SpecVersion() uint16 {
	return l.list.SpecVersion()
}

func (l activeVendorList) Vendor(vendorID uint16) api.Vendor {
	vendor := l.list.Vendor(vendorID)
	if vendor == nil || isDeleted(vendor.DeletedDate(), l.clock.Now()) {
		return nil
	}
	return vendor
}

func isDeleted(deletedDate, now time.Time) bool {
	return !deletedDate.IsZero() && !deletedDate.After(now)
}

// ActiveCMP reports whether a CMP is registered in list and not deleted according to clk.
func ActiveCMP(list *CMPList, id uint16, clk clock.Clock) bool {
	cmp, ok := list.CMP(id)
	return ok && !isDeleted(cmp.DeletedDate, clk.Now())
}

// VendorNames maps each id to its vendor's name. Ids the list does not know, or whose vendor
// was deleted, are left out and reported as warnings.
func VendorNames(list api.VendorList, ids []int) (map[int]string, []error) {
	names := make(map[int]string, len(ids))
	var warnings []error
	for _, id := range ids {
		vendor := list.Vendor(uint16(id))
		if vendor == nil {
			warnings = append(warnings, &errortypes.Warning{
				Message:     fmt.Sprintf("vendor %d is not active in vendor list version %d", id, list.VendorListVersion()),
				WarningCode: errortypes.DeletedVendorWarningCode,
			})
			continue
		}
		names[id] = vendor.Name()
	}
	return names, warnings
}
