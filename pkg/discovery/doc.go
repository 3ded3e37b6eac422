// Package discovery advertises and browses link services over mDNS/DNS-SD.
//
// Every listening link service is published as its own instance of the
// _linkd._tcp service type. The instance name is "<device name>-sec" or
// "<device name>-ins" depending on the service variant.
//
// TXT records:
//   - sid: service record UUID
//   - var: "secure" or "insecure"
//   - DN: device name (optional)
//
// Browsing aggregates instances by name; addresses reported on several
// interfaces are merged into a single PeerService.
package discovery
