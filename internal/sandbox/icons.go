package sandbox

import "slices"

// the feather icon set exposed to components as react-icons/fi
var iconNames = []string{
	"FiActivity", "FiAlertCircle", "FiAlertOctagon", "FiAlertTriangle", "FiAlignCenter",
	"FiAlignLeft", "FiAlignRight", "FiArchive", "FiArrowDown", "FiArrowLeft",
	"FiArrowRight", "FiArrowUp", "FiArrowUpRight", "FiAtSign", "FiAward",
	"FiBarChart", "FiBarChart2", "FiBattery", "FiBell", "FiBook",
	"FiBookmark", "FiBookOpen", "FiBox", "FiBriefcase", "FiCalendar",
	"FiCamera", "FiCheck", "FiCheckCircle", "FiCheckSquare", "FiChevronDown",
	"FiChevronLeft", "FiChevronRight", "FiChevronUp", "FiClipboard", "FiClock",
	"FiCloud", "FiCode", "FiCoffee", "FiCommand", "FiCompass",
	"FiCopy", "FiCpu", "FiCreditCard", "FiDatabase", "FiDollarSign",
	"FiDownload", "FiEdit", "FiEdit2", "FiEdit3", "FiExternalLink",
	"FiEye", "FiEyeOff", "FiFacebook", "FiFile", "FiFileText",
	"FiFilter", "FiFlag", "FiFolder", "FiGift", "FiGithub",
	"FiGlobe", "FiGrid", "FiHeart", "FiHelpCircle", "FiHome",
	"FiImage", "FiInbox", "FiInfo", "FiInstagram", "FiLayers",
	"FiLayout", "FiLifeBuoy", "FiLink", "FiLinkedin", "FiList",
	"FiLoader", "FiLock", "FiLogIn", "FiLogOut", "FiMail",
	"FiMap", "FiMapPin", "FiMaximize", "FiMenu", "FiMessageCircle",
	"FiMessageSquare", "FiMic", "FiMinimize", "FiMinus", "FiMonitor",
	"FiMoon", "FiMoreHorizontal", "FiMoreVertical", "FiMusic", "FiPackage",
	"FiPaperclip", "FiPause", "FiPercent", "FiPhone", "FiPieChart",
	"FiPlay", "FiPlus", "FiPlusCircle", "FiPower", "FiRefreshCw",
	"FiRepeat", "FiRotateCw", "FiSave", "FiSearch", "FiSend",
	"FiServer", "FiSettings", "FiShare", "FiShare2", "FiShield",
	"FiShoppingBag", "FiShoppingCart", "FiSidebar", "FiSliders", "FiSmartphone",
	"FiStar", "FiSun", "FiTag", "FiTarget", "FiTerminal",
	"FiThumbsDown", "FiThumbsUp", "FiToggleLeft", "FiToggleRight", "FiTool",
	"FiTrash", "FiTrash2", "FiTrendingDown", "FiTrendingUp", "FiTruck",
	"FiTwitter", "FiType", "FiUmbrella", "FiUnlock", "FiUpload",
	"FiUser", "FiUserCheck", "FiUserPlus", "FiUsers", "FiVideo",
	"FiVolume2", "FiWifi", "FiX", "FiXCircle", "FiYoutube",
	"FiZap",
}

// returns the names of the icons available to components
func Icons() []string {
	return slices.Clone(iconNames)
}
