package smtp

import "html/template"

// 邮件正文模板，保持简单的内联样式，避免外部资源
var connectionRequestTmpl = template.Must(template.New("connection_request").Parse(`<html>
<body style="font-family: sans-serif; color: #333;">
  <p>{{.RequestedName}}，你好：</p>
  <p><strong>{{.RequesterName}}</strong> 希望与你建立联系。</p>
  <table style="border-collapse: collapse;">
    {{if .RequesterCompany}}<tr><td style="padding: 2px 8px;">当前公司</td><td>{{.RequesterCompany}}</td></tr>{{end}}
    {{if .RequesterRole}}<tr><td style="padding: 2px 8px;">职位</td><td>{{.RequesterRole}}</td></tr>{{end}}
    {{if .RequesterLocation}}<tr><td style="padding: 2px 8px;">所在地</td><td>{{.RequesterLocation}}</td></tr>{{end}}
    {{if .RequesterGradYear}}<tr><td style="padding: 2px 8px;">毕业年份</td><td>{{.RequesterGradYear}}</td></tr>{{end}}
  </table>
  {{if .Message}}<p>留言：{{.Message}}</p>{{end}}
  <p><a href="{{.RequestLink}}">点击查看并处理该请求</a></p>
  <p style="color: #999; font-size: 12px;">如果这不是发给你的邮件，请忽略。</p>
</body>
</html>`))

var connectionAcceptedTmpl = template.Must(template.New("connection_accepted").Parse(`<html>
<body style="font-family: sans-serif; color: #333;">
  <p>{{.RequesterName}}，你好：</p>
  <p><strong>{{.AcceptedName}}</strong> 接受了你的连接请求。</p>
  <table style="border-collapse: collapse;">
    {{if .ContactEmail}}<tr><td style="padding: 2px 8px;">联系邮箱</td><td>{{.ContactEmail}}</td></tr>{{end}}
    {{if .LinkedinURL}}<tr><td style="padding: 2px 8px;">LinkedIn</td><td><a href="{{.LinkedinURL}}">{{.LinkedinURL}}</a></td></tr>{{end}}
  </table>
  <p>现在可以直接联系对方了。</p>
</body>
</html>`))
