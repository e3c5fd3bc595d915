package api

import (
    "net"
    "net/http"
    "strings"
)

// 文档注释：获取访问者 IP（用于访客区域预选）
// 背景：多层代理环境下，优先显式参数，其次常见反向代理头，最后回退远端地址；确保在复杂链路中得到稳定来源 IP。
// 约束：部署于未经信任的代理链路需配合网关过滤，否则头部可被伪造（仅影响预选结果，不影响下单校验）。
func getVisitorIP(r *http.Request) string {
    if q := strings.TrimSpace(r.URL.Query().Get("ip")); q != "" { return q }
    h := r.Header
    if x := h.Get("x-forwarded-for"); x != "" { return strings.TrimSpace(strings.Split(x, ",")[0]) }
    if x := h.Get("cf-connecting-ip"); x != "" { return x }
    if x := h.Get("x-real-ip"); x != "" { return x }
    if x := h.Get("x-client-ip"); x != "" { return x }
    if x := h.Get("forwarded"); x != "" {
        i := strings.Index(strings.ToLower(x), "for=")
        if i >= 0 {
            y := x[i+4:]
            if p := strings.IndexByte(y, ';'); p >= 0 { y = y[:p] }
            if p := strings.IndexByte(y, ','); p >= 0 { y = y[:p] }
            y = strings.Trim(y, "\" ")
            // [2001:db8::1]:4711 形式
            if strings.HasPrefix(y, "[") {
                if p := strings.IndexByte(y, ']'); p > 0 { y = y[1:p] }
            }
            return y
        }
    }
    if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil { return host }
    return r.RemoteAddr
}
