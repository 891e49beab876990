package discovery

import (
	"fmt"
	"strconv"
	"strings"
)

// TXTRecordMap is a map of TXT record key-value pairs.
type TXTRecordMap map[string]string

// EncodeControllerTXT creates TXT records for controller discovery.
func EncodeControllerTXT(info *ControllerInfo) TXTRecordMap {
	txt := make(TXTRecordMap)

	// Required fields
	txt[TXTKeyALMAC] = info.ALMAC
	txt[TXTKeyVersion] = strconv.FormatUint(uint64(info.Version), 10)

	// Optional fields
	if info.FriendlyName != "" {
		txt[TXTKeyFriendlyName] = info.FriendlyName
	}

	return txt
}

// DecodeControllerTXT parses TXT records from controller discovery.
func DecodeControllerTXT(txt TXTRecordMap) (*ControllerInfo, error) {
	info := &ControllerInfo{}

	var ok bool
	info.ALMAC, ok = txt[TXTKeyALMAC]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrMissingRequired, TXTKeyALMAC)
	}

	vStr, ok := txt[TXTKeyVersion]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrMissingRequired, TXTKeyVersion)
	}
	v, err := strconv.ParseUint(vStr, 10, 8)
	if err != nil {
		return nil, ErrInvalidVersion
	}
	info.Version = uint8(v)

	info.FriendlyName = txt[TXTKeyFriendlyName]

	return info, nil
}

// TXTRecordsToStrings converts a TXTRecordMap to a slice of "key=value" strings.
// This format is commonly used by mDNS libraries.
func TXTRecordsToStrings(txt TXTRecordMap) []string {
	result := make([]string, 0, len(txt))
	for k, v := range txt {
		result = append(result, fmt.Sprintf("%s=%s", k, v))
	}
	return result
}

// StringsToTXTRecords parses a slice of "key=value" strings into a TXTRecordMap.
func StringsToTXTRecords(strs []string) TXTRecordMap {
	txt := make(TXTRecordMap)
	for _, s := range strs {
		parts := strings.SplitN(s, "=", 2)
		if len(parts) == 2 {
			txt[parts[0]] = parts[1]
		} else if len(parts) == 1 && parts[0] != "" {
			txt[parts[0]] = ""
		}
	}
	return txt
}
