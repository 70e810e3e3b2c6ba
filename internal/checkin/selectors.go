package checkin

import "pkt.systems/leafcheck/internal/browser"

// OverlaySelector matches blocking modals removed before login.
const OverlaySelector = ".ant-modal-root"

// Login field chains only need presence; the portal renders them before
// hydration makes them visible.
var (
	accountChain = browser.Chain{
		browser.ID("account").Present(),
		browser.CSS("input[type='email']").Present(),
	}
	secretChain = browser.Chain{
		browser.ID("password").Present(),
		browser.CSS("input[type='password']").Present(),
	}
	submitChain = browser.Chain{
		browser.CSS("button[type='submit']").Present(),
		browser.XPath("//button[contains(text(), '登录')]").Present(),
	}
)

// entryChain finds the launchpad widget that leads to the check-in page.
var entryChain = browser.Chain{
	browser.XPath("//div[contains(text(), '签到')]"),
	browser.XPath("//span[contains(text(), '签到')]"),
	browser.XPath("//h3[contains(text(), '签到')]"),
	browser.XPath("//p[contains(text(), '签到')]"),
}

// finalChain finds the button that performs the check-in.
var finalChain = browser.Chain{
	browser.CSS("button.checkin-btn"),
	browser.CSS("button.btn-primary"),
	browser.XPath("//button[contains(text(), '签到')]"),
	browser.XPath("//button[contains(text(), 'Check')]"),
}

// Page text markers.
const (
	MarkerInterstitial = "Just a moment"
	MarkerAlreadyDone  = "已签到"
	MarkerComeBack     = "明日再来"
	MarkerSuccess      = "成功"
)

// Outcome details shown to the operator.
const (
	DetailRewarded            = "签到成功！获得 %s 元"
	DetailSucceeded           = "签到成功！"
	DetailDispatched          = "签到动作已执行"
	DetailAlreadyDone         = "今日已签到"
	DetailAlreadyDoneLanding  = "今日已签到 (启动台显示)"
	DetailBlockedLanding      = "在启动台被拦截"
	DetailBlockedAfterHandoff = "跳转后被Cloudflare拦截"
	DetailNoEntry             = "未在启动台找到签到入口"
	DetailNoButton            = "未找到最终签到按钮"
	DetailFlowError           = "流程异常: "
)

// BalanceUnavailable is reported when the launchpad shows no balance.
const BalanceUnavailable = "获取失败"
